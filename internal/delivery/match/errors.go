package match

import (
	stdErrors "errors"
	"net/http"

	"checkers_exe/internal/errors"
)

// Machine-readable error kinds returned in ErrorResponse.Kind.
const (
	KindNotFound          = "not_found"
	KindMatchFull         = "match_full"
	KindNoPieceAtSource   = "no_piece_at_source"
	KindWrongTurn         = "wrong_turn"
	KindIllegalMove       = "illegal_move"
	KindInvalidCoordinate = "invalid_coordinate"
	KindMatchNotActive    = "match_not_active"
	KindNotParticipant    = "not_participant"
	KindStoreFailure      = "store_failure"
	KindBadRequest        = "bad_request"
)

var errorKinds = []struct {
	err    error
	status int
	kind   string
}{
	{errors.ErrNotFound, http.StatusNotFound, KindNotFound},
	{errors.ErrMatchFull, http.StatusBadRequest, KindMatchFull},
	{errors.ErrNoPieceAtSource, http.StatusBadRequest, KindNoPieceAtSource},
	{errors.ErrWrongTurn, http.StatusBadRequest, KindWrongTurn},
	{errors.ErrIllegalMove, http.StatusBadRequest, KindIllegalMove},
	{errors.ErrInvalidCoordinate, http.StatusBadRequest, KindInvalidCoordinate},
	{errors.ErrMatchNotActive, http.StatusBadRequest, KindMatchNotActive},
	{errors.ErrNotParticipant, http.StatusForbidden, KindNotParticipant},
	{errors.ErrInvalidIdentity, http.StatusBadRequest, KindBadRequest},
}

func classify(err error) (int, string) {
	for _, k := range errorKinds {
		if stdErrors.Is(err, k.err) {
			return k.status, k.kind
		}
	}
	return http.StatusInternalServerError, KindStoreFailure
}
