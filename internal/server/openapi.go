package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"

	"github.com/playperu/pelicansoup/internal/handler/health"
	"github.com/playperu/pelicansoup/internal/soup"
)

// ErrorResponse is returned for all error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusResponse acknowledges calls that return no resource.
type StatusResponse struct {
	Status string `json:"status"`
}

// Path and query parameters, documented separately from request bodies.
type (
	idParam struct {
		ID string `path:"id" format:"uuid"`
	}
	codeParam struct {
		Code string `path:"code" description:"Six character room code, case-insensitive."`
	}
	questionParam struct {
		Code string `path:"code"`
		QID  string `path:"qid" format:"uuid"`
	}
	playerParam struct {
		Code     string `path:"code"`
		PlayerID string `path:"pid" format:"uuid"`
	}
	streamParam struct {
		Code  string `path:"code"`
		Token string `query:"token" description:"Player session token."`
	}
	listPuzzlesParam struct {
		Author string `query:"author" format:"uuid"`
		Lang   string `query:"lang"`
		Limit  int    `query:"limit" minimum:"1" maximum:"100"`
		Offset int    `query:"offset" minimum:"0"`
	}
)

// operation describes one endpoint for the reflector.
type operation struct {
	method, path  string
	summary, desc string
	params        any
	req           any
	ok            any
	okStatus      int
	errors        []int
	contentType   string
}

func (o operation) add(r *openapi3.Reflector) error {
	oc, err := r.NewOperationContext(o.method, o.path)
	if err != nil {
		return fmt.Errorf("%s %s: %w", o.method, o.path, err)
	}
	oc.SetSummary(o.summary)
	oc.SetDescription(o.desc)
	if o.params != nil {
		oc.AddReqStructure(o.params)
	}
	if o.req != nil {
		oc.AddReqStructure(o.req)
	}
	status := o.okStatus
	if status == 0 {
		status = http.StatusOK
	}
	if o.contentType != "" {
		oc.AddRespStructure(nil, openapi.WithHTTPStatus(status), openapi.WithContentType(o.contentType))
	} else {
		oc.AddRespStructure(o.ok, openapi.WithHTTPStatus(status))
	}
	for _, code := range o.errors {
		oc.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(code))
	}
	if err := r.AddOperation(oc); err != nil {
		return fmt.Errorf("%s %s: %w", o.method, o.path, err)
	}
	return nil
}

func newOpenAPISpec() (*openapi3.Spec, error) {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "Pelican Soup API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Backend API for lateral-thinking puzzles and multiplayer rooms.")

	for _, o := range apiOperations() {
		if err := o.add(r); err != nil {
			return nil, fmt.Errorf("documenting %w", err)
		}
	}
	return r.Spec, nil
}

// apiOperations lists every documented route.
func apiOperations() []operation {
	const (
		bad          = http.StatusBadRequest
		unauthorized = http.StatusUnauthorized
		forbidden    = http.StatusForbidden
		notFound     = http.StatusNotFound
		conflict     = http.StatusConflict
	)

	return []operation{
		{method: http.MethodGet, path: "/healthz", summary: "Health check",
			desc: "Returns the health status of backend dependencies.",
			ok:   health.Response{}},

		// Accounts
		{method: http.MethodPost, path: "/api/auth/register", summary: "Register",
			desc: "Creates an account and returns a session token.",
			req:  CredentialsRequest{}, ok: SessionResponse{}, okStatus: http.StatusCreated,
			errors: []int{bad, conflict}},
		{method: http.MethodPost, path: "/api/auth/login", summary: "Log in",
			desc: "Exchanges credentials for a session token.",
			req:  CredentialsRequest{}, ok: SessionResponse{}, errors: []int{bad, unauthorized}},
		{method: http.MethodPost, path: "/api/auth/logout", summary: "Log out",
			desc: "Revokes the bearer session token.",
			ok:   StatusResponse{}, errors: []int{unauthorized}},
		{method: http.MethodGet, path: "/api/auth/me", summary: "Current user",
			desc: "Returns the user owning the bearer token.",
			ok:   soup.User{}, errors: []int{unauthorized}},
		{method: http.MethodGet, path: "/api/users/{id}/stats", params: idParam{}, summary: "User statistics",
			desc: "Solved, guessed and authored puzzle counts.",
			ok:   soup.UserStats{}, errors: []int{notFound}},

		// Puzzles
		{method: http.MethodGet, path: "/api/puzzles", params: listPuzzlesParam{}, summary: "List puzzles",
			desc: "Newest first. Filter with author, lang, limit and offset query parameters. Answers are hidden.",
			ok:   []soup.Puzzle{}},
		{method: http.MethodPost, path: "/api/puzzles", summary: "Create puzzle",
			desc: "Requires Bearer token.",
			req:  PuzzleRequest{}, ok: soup.Puzzle{}, okStatus: http.StatusCreated,
			errors: []int{bad, unauthorized}},
		{method: http.MethodGet, path: "/api/puzzles/{id}", params: idParam{}, summary: "Get puzzle",
			desc: "Counts a view. The answer is only included for the author.",
			ok:   soup.Puzzle{}, errors: []int{notFound}},
		{method: http.MethodPut, path: "/api/puzzles/{id}", params: idParam{}, summary: "Update puzzle",
			desc: "Author only.",
			req:  PuzzleRequest{}, ok: soup.Puzzle{}, errors: []int{bad, unauthorized, forbidden, notFound}},
		{method: http.MethodDelete, path: "/api/puzzles/{id}", params: idParam{}, summary: "Delete puzzle",
			desc: "Author only.",
			ok:   StatusResponse{}, errors: []int{unauthorized, forbidden, notFound}},
		{method: http.MethodPost, path: "/api/puzzles/{id}/like", params: idParam{}, summary: "Toggle like",
			desc: "Likes the puzzle, or removes an existing like. Requires Bearer token.",
			ok:   LikeResponse{}, errors: []int{unauthorized, notFound}},

		// Single-player judging
		{method: http.MethodPost, path: "/api/puzzles/{id}/questions", params: idParam{}, summary: "Ask a question",
			desc: "Returns the suggested verdict. Questions on official puzzles are logged.",
			req:  QuestionRequest{}, ok: QuestionResponse{}, errors: []int{bad, notFound}},
		{method: http.MethodGet, path: "/api/puzzles/{id}/questions", params: idParam{}, summary: "Question log",
			desc: "Questions logged against an official puzzle, oldest first.",
			ok:   []PuzzleQuestion{}, errors: []int{notFound}},
		{method: http.MethodPost, path: "/api/puzzles/{id}/guesses", params: idParam{}, summary: "Submit a guess",
			desc: "Scores a free-text solution from 0 to 100. Signed-in guesses are recorded and a solved guess marks the puzzle solved.",
			req:  GuessRequest{}, ok: GuessResponse{}, errors: []int{bad, notFound}},

		// Comments
		{method: http.MethodGet, path: "/api/puzzles/{id}/comments", params: idParam{}, summary: "List comments",
			desc: "Comments as a tree of replies.",
			ok:   []soup.Comment{}, errors: []int{notFound}},
		{method: http.MethodPost, path: "/api/puzzles/{id}/comments", params: idParam{}, summary: "Post comment",
			desc: "Set parentId to reply. Requires Bearer token.",
			req:  CommentRequest{}, ok: soup.Comment{}, okStatus: http.StatusCreated,
			errors: []int{bad, unauthorized, notFound}},

		// Rooms
		{method: http.MethodPost, path: "/api/rooms", summary: "Create room",
			desc: "Opens a room from a new story, an official puzzle or the caller's own puzzle. The creator becomes host.",
			req:  CreateRoomRequest{}, ok: RoomSessionResponse{}, okStatus: http.StatusCreated,
			errors: []int{bad, forbidden, notFound}},
		{method: http.MethodGet, path: "/api/rooms/{code}", params: codeParam{}, summary: "Room state",
			desc: "Players, questions, guesses and recent chat. The truth is revealed once finished.",
			ok:   RoomStateResponse{}, errors: []int{notFound}},
		{method: http.MethodPost, path: "/api/rooms/{code}/join", params: codeParam{}, summary: "Join room",
			desc: "Returns a player session token.",
			req:  JoinRoomRequest{}, ok: RoomSessionResponse{}, okStatus: http.StatusCreated,
			errors: []int{bad, notFound, conflict}},
		{method: http.MethodPost, path: "/api/rooms/{code}/start", params: codeParam{}, summary: "Start game",
			desc: "Host only. LOBBY to PLAYING.",
			ok:   soup.Room{}, errors: []int{unauthorized, forbidden, notFound, conflict}},
		{method: http.MethodPost, path: "/api/rooms/{code}/finish", params: codeParam{}, summary: "Finish game",
			desc: "Host only. Reveals the truth, or for a stored puzzle only once someone in the room solved it.",
			ok:   soup.Room{}, errors: []int{unauthorized, forbidden, notFound, conflict}},
		{method: http.MethodPost, path: "/api/rooms/{code}/questions", params: codeParam{}, summary: "Ask in room",
			desc: "Stores the question with the engine's suggestion. Fails once the room's question limit is reached.",
			req:  QuestionRequest{}, ok: RoomQuestionResponse{}, okStatus: http.StatusCreated,
			errors: []int{bad, unauthorized, notFound, conflict}},
		{method: http.MethodPut, path: "/api/rooms/{code}/questions/{qid}/verdict", params: questionParam{}, summary: "Answer question",
			desc: "Host only, while playing. Confirms or overrides the suggestion.",
			req:  VerdictRequest{}, ok: soup.QuestionAttempt{},
			errors: []int{bad, unauthorized, forbidden, notFound, conflict}},
		{method: http.MethodPost, path: "/api/rooms/{code}/questions/{qid}/reanalyze", params: questionParam{}, summary: "Reanalyze question",
			desc: "Host only, while playing. Recomputes the suggestion.",
			ok:   RoomQuestionResponse{}, errors: []int{unauthorized, forbidden, notFound, conflict}},
		{method: http.MethodPost, path: "/api/rooms/{code}/guesses", params: codeParam{}, summary: "Guess in room",
			desc: "Scores and stores a solution attempt.",
			req:  GuessRequest{}, ok: RoomGuessResponse{}, okStatus: http.StatusCreated,
			errors: []int{bad, unauthorized, notFound, conflict}},
		{method: http.MethodPost, path: "/api/rooms/{code}/vote", params: codeParam{}, summary: "Vote to eliminate",
			desc: "Records the caller's vote against another active player, replacing any earlier vote.",
			req:  VoteRequest{}, ok: soup.Player{},
			errors: []int{bad, unauthorized, notFound, conflict}},
		{method: http.MethodPost, path: "/api/rooms/{code}/players/{pid}/eliminate", params: playerParam{}, summary: "Eliminate player",
			desc: "Host only. Eliminated players can no longer ask, guess or vote, and votes against them are withdrawn.",
			ok:   soup.Player{}, errors: []int{unauthorized, forbidden, notFound, conflict}},
		{method: http.MethodGet, path: "/api/rooms/{code}/chat", params: codeParam{}, summary: "Chat history",
			desc: "Most recent messages, oldest first.",
			ok:   []soup.ChatMessage{}, errors: []int{unauthorized, notFound}},
		{method: http.MethodPost, path: "/api/rooms/{code}/chat", params: codeParam{}, summary: "Send chat message",
			req: ChatRequest{}, ok: soup.ChatMessage{}, okStatus: http.StatusCreated,
			errors: []int{bad, unauthorized, notFound}},
		{method: http.MethodGet, path: "/api/rooms/{code}/events", params: streamParam{}, summary: "Room event stream",
			desc:        "Server-Sent Events with RoomEvent payloads. Pass token as query parameter.",
			contentType: "text/event-stream", errors: []int{unauthorized, notFound}},
		{method: http.MethodGet, path: "/api/rooms/{code}/ws", params: streamParam{}, summary: "Room websocket",
			desc:     "Upgrades to a WebSocket that receives RoomEvent JSON frames. Pass token as query parameter.",
			okStatus: http.StatusSwitchingProtocols, contentType: "application/json",
			errors: []int{unauthorized, notFound}},
	}
}

// handleOpenAPI serves the document built at startup. A route that cannot
// be documented is a programming error and panics.
func handleOpenAPI() http.HandlerFunc {
	spec, err := newOpenAPISpec()
	if err != nil {
		panic(err)
	}
	data, err := json.MarshalIndent(spec, "", "  ")
	if err != nil {
		panic(fmt.Errorf("encoding openapi document: %w", err))
	}

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
