package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"checkers_exe/internal/domain/checkers"
	"checkers_exe/internal/domain/match"
	"checkers_exe/internal/errors"
	"checkers_exe/internal/httpresponse"
)

const defaultTimeout = 10 * time.Second

// APIError is a non-2xx answer from the server. It unwraps to the matching
// sentinel from internal/errors so callers can use errors.Is.
type APIError struct {
	Status      int
	Kind        string
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("checkers api: %d %s: %s", e.Status, e.Kind, e.Description)
}

var kindErrors = map[string]error{
	"not_found":          errors.ErrNotFound,
	"match_full":         errors.ErrMatchFull,
	"no_piece_at_source": errors.ErrNoPieceAtSource,
	"wrong_turn":         errors.ErrWrongTurn,
	"illegal_move":       errors.ErrIllegalMove,
	"invalid_coordinate": errors.ErrInvalidCoordinate,
	"match_not_active":   errors.ErrMatchNotActive,
	"not_participant":    errors.ErrNotParticipant,
	"store_failure":      errors.ErrStoreFailure,
}

func (e *APIError) Unwrap() error {
	return kindErrors[e.Kind]
}

// Client talks to the match REST API.
type Client struct {
	baseURL string
	http    *http.Client
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Create(ctx context.Context, creator string) (*match.CreateMatchResponse, error) {
	var out match.CreateMatchResponse
	if err := c.do(ctx, http.MethodPost, "/matches", match.CreateMatchRequest{Creator: creator}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Join(ctx context.Context, code, joiner string) (*match.JoinMatchResponse, error) {
	var out match.JoinMatchResponse
	path := "/matches/" + url.PathEscape(code) + "/join"
	if err := c.do(ctx, http.MethodPost, path, match.JoinMatchRequest{Joiner: joiner}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Get(ctx context.Context, id string) (*match.Match, error) {
	var out match.Match
	if err := c.do(ctx, http.MethodGet, "/matches/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Move(ctx context.Context, id string, from, to checkers.Square, by string) (*match.Match, error) {
	var out match.Match
	req := match.SubmitMoveRequest{From: from, To: to, By: by}
	if err := c.do(ctx, http.MethodPost, "/matches/"+url.PathEscape(id)+"/move", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Resign(ctx context.Context, id, by string) (*match.Match, error) {
	var out match.Match
	if err := c.do(ctx, http.MethodPost, "/matches/"+url.PathEscape(id)+"/resign", match.ResignRequest{By: by}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) LegalMoves(ctx context.Context, id string, sq checkers.Square) ([]checkers.Move, error) {
	var out match.LegalMovesResponse
	q := url.Values{}
	q.Set("row", strconv.Itoa(sq.Row))
	q.Set("col", strconv.Itoa(sq.Col))
	if err := c.do(ctx, http.MethodGet, "/matches/"+url.PathEscape(id)+"/moves?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return out.Moves, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var env httpresponse.Response[json.RawMessage]
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("%s %s: decode response (status %d): %w", method, path, resp.StatusCode, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr httpresponse.ErrorResponse
		_ = json.Unmarshal(env.Body, &apiErr)
		return &APIError{Status: resp.StatusCode, Kind: apiErr.Kind, Description: apiErr.ErrorDescription}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(env.Body, out); err != nil {
		return fmt.Errorf("%s %s: decode body: %w", method, path, err)
	}
	return nil
}
