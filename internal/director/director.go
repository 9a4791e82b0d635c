package director

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/malexanderboyd/pwr9-cubeflow/internal"
	"github.com/malexanderboyd/pwr9-cubeflow/internal/director/models"
	"github.com/malexanderboyd/pwr9-cubeflow/internal/director/utils"
	"github.com/malexanderboyd/pwr9-cubeflow/internal/game"
	"github.com/malexanderboyd/pwr9-cubeflow/internal/replay"
)

type pickRequest struct {
	clientID string
	index    int
}

type replayRequest struct {
	seat, pick int
	resp       chan replay.DrafterState
}

// Server drives one live Session over websockets. Every change to the
// session happens on the Listen goroutine.
type Server struct {
	DraftID string
	// PickTimer forces the first card of the pack when the drafter takes
	// longer. Zero disables it.
	PickTimer time.Duration

	session   *Session
	host      string
	seatOwner string
	Clients   map[string]*Client

	addClientCh chan *Client
	delClientCh chan *Client
	pickCh      chan pickRequest
	replayCh    chan replayRequest
	errCh       chan error
	quit        chan struct{}
	finished    chan struct{}
}

func NewServer(session *Session) *Server {
	return &Server{
		DraftID:     session.Draft().ID,
		session:     session,
		host:        models.NoHostSentinel,
		Clients:     make(map[string]*Client),
		addClientCh: make(chan *Client),
		delClientCh: make(chan *Client),
		pickCh:      make(chan pickRequest),
		replayCh:    make(chan replayRequest),
		errCh:       make(chan error, models.ChannelBufSize),
		quit:        make(chan struct{}),
		finished:    make(chan struct{}),
	}
}

// Finished is closed once the draft is complete and every client was told.
func (s *Server) Finished() <-chan struct{} {
	return s.finished
}

func (s *Server) AddNewClient(c *Client) {
	select {
	case s.addClientCh <- c:
	case <-s.quit:
		c.Done()
	}
}

func (s *Server) DeleteClient(c *Client) {
	select {
	case s.delClientCh <- c:
	case <-s.quit:
	}
}

func (s *Server) Error(err error) {
	select {
	case s.errCh <- err:
	default:
	}
}

// Handler serves the websocket endpoint and the replay of any seat's pick
// at /replay/{seat}/{pick}.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/ws", s.newClient)
	r.HandleFunc("/replay/{seat:[0-9]+}/{pick:[0-9]+}", s.replayState).Methods(http.MethodGet)
	return r
}

func (s *Server) replayState(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	seat, err := strconv.Atoi(vars["seat"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	pick, err := strconv.Atoi(vars["pick"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	req := replayRequest{seat: seat, pick: pick, resp: make(chan replay.DrafterState, 1)}
	select {
	case s.replayCh <- req:
	case <-s.quit:
		http.Error(w, "draft server stopped", http.StatusServiceUnavailable)
		return
	case <-r.Context().Done():
		return
	}
	state := <-req.resp
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(state); err != nil {
		s.Error(err)
	}
}

func (s *Server) newClient(w http.ResponseWriter, r *http.Request) {
	_, clientID := utils.HasDraftClientIDCookie(r, models.DraftCookieName)
	client, err := NewClient(s, clientID)
	if err != nil {
		s.Error(err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
	header := utils.CreateDraftClientIDCookieHeader(client.Id, models.DraftCookieName, 30*time.Minute)
	ws, err := upgrader.Upgrade(w, r, header)
	if err != nil {
		s.Error(err)
		return
	}
	client.Websocket = ws
	s.AddNewClient(client)
	go client.Listen()
}

// HandleClientMessage is called from client goroutines.
func (s *Server) HandleClientMessage(clientID string, msg *models.Message) {
	switch msg.Type {
	case models.ChooseCard:
		var choice models.ChooseCardJson
		if err := json.Unmarshal([]byte(msg.Data), &choice); err != nil {
			s.Error(fmt.Errorf("client %s sent malformed choose_card: %w", clientID, err))
			return
		}
		select {
		case s.pickCh <- pickRequest{clientID: clientID, index: choice.PickedCardIndex}:
		case <-s.quit:
		}
	default:
		s.Error(fmt.Errorf("client %s sent unsupported message type %q", clientID, msg.Type))
	}
}

// Listen runs the draft until it completes or ctx is done.
func (s *Server) Listen(ctx context.Context) {
	logger := internal.GetLogger()
	logger.Infow("Listening", "draft", s.DraftID)
	defer close(s.quit)

	var timer *time.Timer
	var timerC <-chan time.Time
	resetTimer := func() {
		if s.PickTimer <= 0 {
			return
		}
		if timer != nil {
			timer.Stop()
		}
		timer = time.NewTimer(s.PickTimer)
		timerC = timer.C
	}

	for {
		select {
		case c := <-s.addClientCh:
			// A reconnect can arrive before the old connection is removed.
			if old, ok := s.Clients[c.Id]; ok && old != c {
				old.Done()
			}
			s.Clients[c.Id] = c
			logger.Debugw("Added new client", "client", c.Id, "total", len(s.Clients))
			vacant := s.host == models.NoHostSentinel && (s.seatOwner == "" || s.seatOwner == c.Id)
			if vacant || s.host == c.Id {
				s.host, s.seatOwner = c.Id, c.Id
				c.Write(&models.Message{Type: models.HostChange, Data: strconv.Itoa(1)})
				s.sendPack()
				s.sendPool()
				resetTimer()
			}
			s.sendAll(&models.Message{Type: models.NewPlayer, Data: strconv.Itoa(len(s.Clients))})
		case c := <-s.delClientCh:
			if cur, ok := s.Clients[c.Id]; !ok || cur != c {
				continue
			}
			logger.Debugw("Removing client", "client", c.Id)
			delete(s.Clients, c.Id)
			if c.Id == s.host {
				s.host = models.NoHostSentinel
			}
			s.sendAll(&models.Message{Type: models.NewPlayer, Data: strconv.Itoa(len(s.Clients))})
		case req := <-s.pickCh:
			if req.clientID != s.host {
				s.sendError(req.clientID, errors.New("only the seated drafter may pick"))
				continue
			}
			if s.pick(ctx, req.index) {
				s.shutdown()
				return
			}
			resetTimer()
		case req := <-s.replayCh:
			req.resp <- replay.GetDrafterState(s.session.Draft(), req.seat, req.pick)
		case <-timerC:
			logger.Infow("Times up! Forcing pick", "draft", s.DraftID, "pick", s.session.Draft().PickNumber)
			if s.pick(ctx, 0) {
				s.shutdown()
				return
			}
			resetTimer()
		case err := <-s.errCh:
			logger.Errorw("error occurred", "draft", s.DraftID, "error", err.Error())
		case <-ctx.Done():
			logger.Infow("Stopping draft server", "draft", s.DraftID)
			for _, c := range s.Clients {
				c.Done()
			}
			return
		}
	}
}

// pick applies the drafter's choice and reports whether the draft is over.
func (s *Server) pick(ctx context.Context, index int) bool {
	if err := s.session.ApplyPick(ctx, index); err != nil {
		s.sendError(s.host, err)
		return errors.Is(err, ErrDraftComplete)
	}
	s.sendPool()
	if s.session.Done() {
		return true
	}
	s.sendPack()
	return false
}

func (s *Server) shutdown() {
	logger := internal.GetLogger()
	s.sendAll(&models.Message{Type: models.GameEnd, Data: strconv.Itoa(len(s.Clients))})
	for _, c := range s.Clients {
		c.Done()
	}
	close(s.finished)
	logger.Infow("Ended Draft.", "draft", s.DraftID)
}

func (s *Server) sendAll(msg *models.Message) {
	for _, c := range s.Clients {
		c.Write(msg)
	}
}

func (s *Server) sendPack() {
	host, ok := s.Clients[s.host]
	if !ok {
		return
	}
	view := s.session.CurrentPack(0)
	pack := &models.CardPack{
		DraftID:    s.DraftID,
		PackNumber: view.PackNumber + 1,
		PickNumber: view.PickNumber,
		Action:     view.Action,
		Pack:       view.Cards,
	}
	if s.PickTimer > 0 {
		pack.Timer = int(s.PickTimer / time.Second)
	}
	host.WriteJSON(models.PackContent, pack)
}

func (s *Server) sendPool() {
	host, ok := s.Clients[s.host]
	if !ok {
		return
	}
	draft := s.session.Draft()
	seat := draft.Seats[0]
	host.WriteJSON(models.PoolContent, &models.DraftPool{
		Picks:   cardsOf(draft, seat.PickOrder),
		Trashed: cardsOf(draft, seat.TrashOrder),
	})
}

func (s *Server) sendError(clientID string, err error) {
	if c, ok := s.Clients[clientID]; ok {
		c.Write(&models.Message{Type: models.PickError, Data: err.Error()})
	}
}

func cardsOf(draft *game.Draft, refs []game.CardRef) []game.Card {
	cards := make([]game.Card, 0, len(refs))
	for _, ref := range refs {
		if draft.ValidRef(ref) {
			cards = append(cards, draft.Cards[ref])
		}
	}
	return cards
}

// StartDraftServer serves session on port until the draft completes or ctx
// is done.
func StartDraftServer(ctx context.Context, session *Session, port int, pickTimer time.Duration) error {
	logger := internal.GetLogger()
	server := NewServer(session)
	server.PickTimer = pickTimer

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: server.Handler(),
	}
	listenCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go server.Listen(listenCtx)
	go func() {
		select {
		case <-server.Finished():
		case <-listenCtx.Done():
		}
		// Give clients a moment to receive end_game.
		time.Sleep(time.Second)
		_ = httpServer.Close()
	}()

	logger.Infow("Starting socket server", "draft", server.DraftID, "port", port)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
