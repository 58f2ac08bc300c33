package server

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"nhooyr.io/websocket"

	"github.com/playperu/pelicansoup/internal/judge"
	"github.com/playperu/pelicansoup/internal/soup"
)

func createRoom(t *testing.T, ts *testServer, req CreateRoomRequest) RoomSessionResponse {
	t.Helper()
	w := ts.do(http.MethodPost, "/api/rooms", "", req)
	if w.Code != http.StatusCreated {
		t.Fatalf("create room: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	return decode[RoomSessionResponse](t, w)
}

func joinRoom(t *testing.T, ts *testServer, code, nickname string) RoomSessionResponse {
	t.Helper()
	w := ts.do(http.MethodPost, "/api/rooms/"+code+"/join", "", JoinRoomRequest{Nickname: nickname})
	if w.Code != http.StatusCreated {
		t.Fatalf("join %s: expected 201, got %d: %s", nickname, w.Code, w.Body.String())
	}
	return decode[RoomSessionResponse](t, w)
}

func icemanRoom(t *testing.T, ts *testServer, maxQuestions int) RoomSessionResponse {
	t.Helper()
	return createRoom(t, ts, CreateRoomRequest{
		Nickname:     "host",
		Title:        "Locked room",
		Story:        icemanContent,
		Truth:        icemanAnswer,
		MaxQuestions: maxQuestions,
	})
}

func TestCreateRoom(t *testing.T) {
	ts := newTestServer(t)

	host := icemanRoom(t, ts, 0)

	if len(host.Room.Code) != roomCodeLen || strings.ToUpper(host.Room.Code) != host.Room.Code {
		t.Errorf("unexpected room code %q", host.Room.Code)
	}
	if host.Room.Status != soup.RoomLobby {
		t.Errorf("expected LOBBY, got %s", host.Room.Status)
	}
	if host.Room.Truth != "" {
		t.Error("truth must be hidden while the room is open")
	}
	if host.Room.MaxQuestions != defaultQuestions || host.Room.Lang != "en" {
		t.Errorf("expected defaults, got max=%d lang=%q", host.Room.MaxQuestions, host.Room.Lang)
	}
	if !host.Player.IsHost || host.Token == "" {
		t.Errorf("creator should be host with a token: %+v", host.Player)
	}
}

func TestCreateRoomFromPuzzle(t *testing.T) {
	ts := newTestServer(t)
	p := ts.officialPuzzle()

	host := createRoom(t, ts, CreateRoomRequest{Nickname: "host", PuzzleID: p.ID})
	if host.Room.Story != icemanContent || host.Room.Title != p.Title {
		t.Errorf("room should copy the puzzle: %+v", host.Room)
	}

	room, err := ts.store.RoomByCode(context.Background(), host.Room.Code)
	if err != nil {
		t.Fatal(err)
	}
	if room.Truth != icemanAnswer {
		t.Errorf("stored truth = %q, want the puzzle answer", room.Truth)
	}
}

func TestCreateRoomFromAuthoredPuzzle(t *testing.T) {
	ts := newTestServer(t)
	ann := ts.register("ann")
	bob := ts.register("bob")
	p := createPuzzle(t, ts, ann.Token, PuzzleRequest{Title: "Mine", Content: icemanContent, Answer: icemanAnswer})
	req := CreateRoomRequest{Nickname: "host", PuzzleID: p.ID}

	for name, token := range map[string]string{"anonymous": "", "stranger": bob.Token} {
		w := ts.do(http.MethodPost, "/api/rooms", token, req)
		if w.Code != http.StatusForbidden {
			t.Errorf("%s: expected 403, got %d: %s", name, w.Code, w.Body.String())
		}
	}

	w := ts.do(http.MethodPost, "/api/rooms", ann.Token, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("author: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if room := decode[RoomSessionResponse](t, w).Room; room.PuzzleID != p.ID || room.Truth != "" {
		t.Errorf("author room: got %+v", room)
	}
}

func TestPuzzleRoomRevealsAnswerOnlyWhenSolved(t *testing.T) {
	ts := newTestServer(t)
	p := ts.officialPuzzle()

	// Closing the lobby straight away must not leak the answer.
	host := createRoom(t, ts, CreateRoomRequest{Nickname: "host", PuzzleID: p.ID})
	code := host.Room.Code
	events := ts.broker.Subscribe(code)
	defer ts.broker.Unsubscribe(code, events)

	w := ts.do(http.MethodPost, "/api/rooms/"+code+"/finish", host.Token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("finish: expected 200, got %d", w.Code)
	}
	if room := decode[soup.Room](t, w); room.Truth != "" || room.Solved {
		t.Errorf("finish unsolved: got %+v", room)
	}
	var ev RoomEvent
	if err := json.Unmarshal(<-events, &ev); err != nil {
		t.Fatal(err)
	}
	if ev.Type != EventStatusChanged || ev.Truth != "" {
		t.Errorf("finish event leaked the answer: %+v", ev)
	}
	w = ts.do(http.MethodGet, "/api/rooms/"+code, "", nil)
	if state := decode[RoomStateResponse](t, w); state.Room.Truth != "" {
		t.Error("state leaked the answer of an unsolved puzzle")
	}

	// A solving guess earns the reveal.
	host = createRoom(t, ts, CreateRoomRequest{Nickname: "host", PuzzleID: p.ID})
	code = host.Room.Code
	if w := ts.do(http.MethodPost, "/api/rooms/"+code+"/start", host.Token, nil); w.Code != http.StatusOK {
		t.Fatalf("start: expected 200, got %d", w.Code)
	}
	w = ts.do(http.MethodPost, "/api/rooms/"+code+"/guesses", host.Token, GuessRequest{Guess: "He was frozen in a block of ice that melted"})
	if g := decode[RoomGuessResponse](t, w).Guess; g.Closeness != judge.Solved {
		t.Fatalf("guess should solve the puzzle: %+v", g)
	}
	w = ts.do(http.MethodPost, "/api/rooms/"+code+"/finish", host.Token, nil)
	if room := decode[soup.Room](t, w); room.Truth != icemanAnswer || !room.Solved {
		t.Errorf("finish solved: got %+v", room)
	}
}

func TestCreateRoomValidation(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name       string
		req        CreateRoomRequest
		wantStatus int
	}{
		{"no nickname", CreateRoomRequest{Story: "s", Truth: "t"}, http.StatusBadRequest},
		{"no story or puzzle", CreateRoomRequest{Nickname: "host"}, http.StatusBadRequest},
		{"too many questions", CreateRoomRequest{Nickname: "host", Story: "s", Truth: "t", MaxQuestions: 1000}, http.StatusBadRequest},
		{"unknown puzzle", CreateRoomRequest{Nickname: "host", PuzzleID: "9b2f7c9e-8a4d-4b1e-9a55-0c6a1d3e2f10"}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.do(http.MethodPost, "/api/rooms", "", tt.req)
			if w.Code != tt.wantStatus {
				t.Errorf("expected %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestRoomNotFound(t *testing.T) {
	ts := newTestServer(t)

	if w := ts.do(http.MethodGet, "/api/rooms/ZZZZZZ", "", nil); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestJoinRoom(t *testing.T) {
	ts := newTestServer(t)
	host := icemanRoom(t, ts, 0)

	guest := joinRoom(t, ts, strings.ToLower(host.Room.Code), "guest")
	if guest.Player.IsHost || guest.Token == "" || guest.Token == host.Token {
		t.Errorf("unexpected guest session: %+v", guest)
	}

	w := ts.do(http.MethodPost, "/api/rooms/"+host.Room.Code+"/join", "", JoinRoomRequest{Nickname: "guest"})
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate nickname: expected 409, got %d", w.Code)
	}

	// Tokens are scoped to their room.
	other := icemanRoom(t, ts, 0)
	w = ts.do(http.MethodPost, "/api/rooms/"+other.Room.Code+"/chat", guest.Token, ChatRequest{Body: "hi"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("foreign token: expected 401, got %d", w.Code)
	}
}

func TestRoomGameFlow(t *testing.T) {
	ts := newTestServer(t)
	host := icemanRoom(t, ts, 2)
	code := host.Room.Code

	events := ts.broker.Subscribe(code)
	defer ts.broker.Unsubscribe(code, events)

	guest := joinRoom(t, ts, code, "guest")
	ask := func(token, q string) *httptest.ResponseRecorder {
		return ts.do(http.MethodPost, "/api/rooms/"+code+"/questions", token, QuestionRequest{Question: q})
	}

	// Questions wait for the game to start.
	if w := ask(guest.Token, "Is water important to the answer?"); w.Code != http.StatusConflict {
		t.Fatalf("ask in lobby: expected 409, got %d", w.Code)
	}

	if w := ts.do(http.MethodPost, "/api/rooms/"+code+"/start", guest.Token, nil); w.Code != http.StatusForbidden {
		t.Fatalf("start by guest: expected 403, got %d", w.Code)
	}
	w := ts.do(http.MethodPost, "/api/rooms/"+code+"/start", host.Token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("start: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if room := decode[soup.Room](t, w); room.Status != soup.RoomPlaying || room.StartedAt == nil {
		t.Errorf("start: got %+v", room)
	}
	if w := ts.do(http.MethodPost, "/api/rooms/"+code+"/start", host.Token, nil); w.Code != http.StatusConflict {
		t.Errorf("second start: expected 409, got %d", w.Code)
	}

	// Ask and judge.
	w = ask(guest.Token, "Is water important to the answer?")
	if w.Code != http.StatusCreated {
		t.Fatalf("ask: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	q := decode[RoomQuestionResponse](t, w).Question
	if q.Suggestion != judge.Yes || q.Verdict != judge.Pending || q.Nickname != "guest" {
		t.Errorf("ask: got %+v", q)
	}

	verdictPath := "/api/rooms/" + code + "/questions/" + q.ID + "/verdict"
	if w := ts.do(http.MethodPut, verdictPath, guest.Token, VerdictRequest{Verdict: "no"}); w.Code != http.StatusForbidden {
		t.Errorf("verdict by guest: expected 403, got %d", w.Code)
	}
	if w := ts.do(http.MethodPut, verdictPath, host.Token, VerdictRequest{Verdict: "maybe"}); w.Code != http.StatusBadRequest {
		t.Errorf("bad verdict: expected 400, got %d", w.Code)
	}
	w = ts.do(http.MethodPut, verdictPath, host.Token, VerdictRequest{Verdict: "No"})
	if w.Code != http.StatusOK {
		t.Fatalf("verdict: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if judged := decode[soup.QuestionAttempt](t, w); judged.Verdict != judge.No || judged.AnsweredAt == nil {
		t.Errorf("verdict: got %+v", judged)
	}

	w = ts.do(http.MethodPost, "/api/rooms/"+code+"/questions/"+q.ID+"/reanalyze", host.Token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("reanalyze: expected 200, got %d", w.Code)
	}
	if re := decode[RoomQuestionResponse](t, w).Question; re.Suggestion != judge.Yes || re.Verdict != judge.No {
		t.Errorf("reanalyze should keep the host verdict: %+v", re)
	}

	// The question cap is shared by the room.
	if w := ask(host.Token, "Was he frozen in a block of ice?"); w.Code != http.StatusCreated {
		t.Fatalf("second ask: expected 201, got %d", w.Code)
	}
	w = ask(guest.Token, "Did he like pizza?")
	if w.Code != http.StatusConflict || errorMessage(t, w) != "question limit reached" {
		t.Fatalf("over limit: expected 409 question limit reached, got %d", w.Code)
	}

	// Guess and chat.
	w = ts.do(http.MethodPost, "/api/rooms/"+code+"/guesses", guest.Token, GuessRequest{Guess: "The ice melted and killed him"})
	if w.Code != http.StatusCreated {
		t.Fatalf("guess: expected 201, got %d", w.Code)
	}
	if g := decode[RoomGuessResponse](t, w).Guess; g.Score == nil || g.Closeness != judge.Solved {
		t.Errorf("guess: got %+v", g)
	}

	if w := ts.do(http.MethodPost, "/api/rooms/"+code+"/chat", host.Token, ChatRequest{Body: "nice!"}); w.Code != http.StatusCreated {
		t.Fatalf("chat: expected 201, got %d", w.Code)
	}
	w = ts.do(http.MethodGet, "/api/rooms/"+code+"/chat", guest.Token, nil)
	if msgs := decode[[]soup.ChatMessage](t, w); len(msgs) != 1 || msgs[0].Nickname != "host" {
		t.Errorf("chat history: got %+v", msgs)
	}

	// Snapshot before finishing hides the truth.
	w = ts.do(http.MethodGet, "/api/rooms/"+code, "", nil)
	state := decode[RoomStateResponse](t, w)
	if state.Room.Truth != "" {
		t.Error("state leaked the truth before finish")
	}
	if len(state.Players) != 2 || len(state.Questions) != 2 || len(state.Guesses) != 1 || len(state.Messages) != 1 {
		t.Errorf("unexpected snapshot sizes: %d players, %d questions, %d guesses, %d messages",
			len(state.Players), len(state.Questions), len(state.Guesses), len(state.Messages))
	}
	if state.Room.QuestionCount != 2 {
		t.Errorf("question count = %d, want 2", state.Room.QuestionCount)
	}

	// Finish reveals the truth.
	w = ts.do(http.MethodPost, "/api/rooms/"+code+"/finish", host.Token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("finish: expected 200, got %d", w.Code)
	}
	if room := decode[soup.Room](t, w); room.Truth != icemanAnswer || room.FinishedAt == nil {
		t.Errorf("finish: got %+v", room)
	}
	if w := ts.do(http.MethodPost, "/api/rooms/"+code+"/join", "", JoinRoomRequest{Nickname: "late"}); w.Code != http.StatusConflict {
		t.Errorf("join after finish: expected 409, got %d", w.Code)
	}
	if w := ask(guest.Token, "Anything?"); w.Code != http.StatusConflict {
		t.Errorf("ask after finish: expected 409, got %d", w.Code)
	}

	want := []string{
		EventPlayerJoined,
		EventStatusChanged,
		EventQuestionAsked,
		EventQuestionJudged,
		EventQuestionJudged,
		EventQuestionAsked,
		EventGuessMade,
		EventChatMessage,
		EventStatusChanged,
	}
	for i, typ := range want {
		select {
		case data := <-events:
			var ev RoomEvent
			if err := json.Unmarshal(data, &ev); err != nil {
				t.Fatalf("event %d: %v", i, err)
			}
			if ev.Type != typ || ev.RoomCode != code {
				t.Errorf("event %d: got %s for %s, want %s", i, ev.Type, ev.RoomCode, typ)
			}
			if typ == EventStatusChanged && ev.Status == soup.RoomFinished && ev.Truth != icemanAnswer {
				t.Errorf("finish event should carry the truth, got %q", ev.Truth)
			}
		default:
			t.Fatalf("missing event %d (%s)", i, typ)
		}
	}
}

func TestFinishFromLobby(t *testing.T) {
	ts := newTestServer(t)
	host := icemanRoom(t, ts, 0)

	w := ts.do(http.MethodPost, "/api/rooms/"+host.Room.Code+"/finish", host.Token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w := ts.do(http.MethodPost, "/api/rooms/"+host.Room.Code+"/start", host.Token, nil); w.Code != http.StatusConflict {
		t.Errorf("start after finish: expected 409, got %d", w.Code)
	}
}

func TestRoomEventStream(t *testing.T) {
	ts := newTestServer(t)
	host := icemanRoom(t, ts, 0)
	code := host.Room.Code

	srv := httptest.NewServer(ts.router)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/rooms/"+code+"/events?token="+host.Token, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Content-Type"); got != "text/event-stream" {
		t.Fatalf("content-type = %q", got)
	}

	joinRoom(t, ts, code, "guest")

	sc := bufio.NewScanner(resp.Body)
	for sc.Scan() {
		data, ok := strings.CutPrefix(sc.Text(), "data: ")
		if !ok {
			continue
		}
		var ev RoomEvent
		if err := json.Unmarshal([]byte(data), &ev); err != nil {
			t.Fatalf("decoding event: %v", err)
		}
		if ev.Type != EventPlayerJoined || ev.Player == nil || ev.Player.Nickname != "guest" {
			t.Fatalf("unexpected event %+v", ev)
		}
		return
	}
	t.Fatalf("stream ended without an event: %v", sc.Err())
}

func TestRoomEventStreamRequiresToken(t *testing.T) {
	ts := newTestServer(t)
	host := icemanRoom(t, ts, 0)

	if w := ts.do(http.MethodGet, "/api/rooms/"+host.Room.Code+"/events", "", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestRoomWebSocket(t *testing.T) {
	ts := newTestServer(t)
	host := icemanRoom(t, ts, 0)
	code := host.Room.Code

	srv := httptest.NewServer(ts.router)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := "ws" + srv.URL[len("http"):] + "/api/rooms/" + code + "/ws?token=" + host.Token
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.CloseNow()

	messages := []string{"hola", "¡qué misterio!", "🧊"}
	for _, body := range messages {
		if w := ts.do(http.MethodPost, "/api/rooms/"+code+"/chat", host.Token, ChatRequest{Body: body}); w.Code != http.StatusCreated {
			t.Fatalf("chat: expected 201, got %d", w.Code)
		}
	}

	for _, want := range messages {
		_, data, err := conn.Read(ctx)
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		var ev RoomEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			t.Fatalf("decoding: %v", err)
		}
		if ev.Type != EventChatMessage || ev.Message == nil || ev.Message.Body != want {
			t.Errorf("got %+v, want chat %q", ev, want)
		}
	}

	conn.Close(websocket.StatusNormalClosure, "done")
}
