package game

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/playmatatu/pitch/internal/auth"
	"github.com/playmatatu/pitch/internal/config"
	"github.com/playmatatu/pitch/internal/models"
	"github.com/redis/go-redis/v9"
)

var (
	ErrGameNotFound = errors.New("game not found")
	ErrGameEnded    = errors.New("game has ended")
)

// End reasons stored with a completed session.
const (
	ReasonEnded    = "ended"
	ReasonExpired  = "expired"
	ReasonIdle     = "idle"
	ReasonShutdown = "shutdown"
)

// PitchGame is one hosted pitch session plus the credentials needed to join it.
type PitchGame struct {
	ID             string
	Token          string
	PlayerOneToken string
	PlayerTwoToken string
	SessionID      int // pitch_sessions row, 0 without a database
	CreatedAt      time.Time
	Session        *PitchSession

	hostKeyHash string

	// storeMu orders writes of the game's snapshot to storage.
	storeMu     sync.Mutex
	storedSeq   uint64
	storeClosed bool

	mu           sync.Mutex
	lastActivity time.Time
	goals        []models.GoalEvent
	listeners    map[int]EventListener
	nextListener int
}

// storeSnapshot runs write unless a newer snapshot was already stored or the final one
// has been. Goal writes run on their own goroutines and may arrive out of order.
func (g *PitchGame) storeSnapshot(seq uint64, final bool, write func()) bool {
	g.storeMu.Lock()
	defer g.storeMu.Unlock()
	if g.storeClosed || seq < g.storedSeq {
		return false
	}
	g.storedSeq = seq
	g.storeClosed = final
	write()
	return true
}

// Geometry returns the fixed pitch dimensions of the game.
func (g *PitchGame) Geometry() Geometry {
	return g.Session.State().Geometry
}

// VerifyHostKey checks the secret returned to whoever created the game.
func (g *PitchGame) VerifyHostKey(key string) bool {
	if key == "" {
		return false
	}
	return auth.VerifyHostKey(g.hostKeyHash, key)
}

// LastActivity is the time of the most recent pointer event or creation.
func (g *PitchGame) LastActivity() time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastActivity
}

// Goals returns the goals scored in this process, oldest first.
func (g *PitchGame) Goals() []models.GoalEvent {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]models.GoalEvent, len(g.goals))
	copy(out, g.goals)
	return out
}

// Listen registers fn for lifecycle events of this game and returns a func removing it.
func (g *PitchGame) Listen(fn EventListener) func() {
	g.mu.Lock()
	id := g.nextListener
	g.nextListener++
	g.listeners[id] = fn
	g.mu.Unlock()

	return func() {
		g.mu.Lock()
		delete(g.listeners, id)
		g.mu.Unlock()
	}
}

func (g *PitchGame) emit(ev Event) {
	g.mu.Lock()
	fns := make([]EventListener, 0, len(g.listeners))
	for _, fn := range g.listeners {
		fns = append(fns, fn)
	}
	g.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

func (g *PitchGame) touch(now time.Time) {
	g.mu.Lock()
	g.lastActivity = now
	g.mu.Unlock()
}

func (g *PitchGame) addGoal(rec models.GoalEvent) {
	g.mu.Lock()
	g.goals = append(g.goals, rec)
	g.mu.Unlock()
}

// SessionManager hosts every running pitch session of this process
type SessionManager struct {
	games      map[string]*PitchGame // keyed by game ID
	tokens     map[string]string     // game token -> game ID
	rdb        *redis.Client         // snapshot cache, event bus and idle ZSET; may be nil
	db         *sqlx.DB              // session and goal history; may be nil
	config     *config.Config
	instanceID string
	mu         sync.RWMutex
}

var (
	// Global session manager instance
	Manager *SessionManager
)

// InitializeManager initializes the global session manager with the optional stores
func InitializeManager(db *sqlx.DB, rdb *redis.Client, cfg *config.Config) *SessionManager {
	Manager = NewSessionManager(db, rdb, cfg)
	return Manager
}

// NewSessionManager creates an empty manager. db and rdb may be nil.
func NewSessionManager(db *sqlx.DB, rdb *redis.Client, cfg *config.Config) *SessionManager {
	return &SessionManager{
		games:      make(map[string]*PitchGame),
		tokens:     make(map[string]string),
		rdb:        rdb,
		db:         db,
		config:     cfg,
		instanceID: uuid.NewString(),
	}
}

// InstanceID identifies this process on the shared event channel.
func (gm *SessionManager) InstanceID() string {
	return gm.instanceID
}

// Config returns the configuration the manager was created with.
func (gm *SessionManager) Config() *config.Config {
	return gm.config
}

// generateToken generates a secure random token
func generateToken(length int) string {
	bytes := make([]byte, length)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

// generateGameID generates a unique game ID
func generateGameID() string {
	return "pitch_" + uuid.NewString()
}

// DefaultGeometry is the pitch used when a create request carries no dimensions.
func DefaultGeometry(cfg *config.Config) Geometry {
	return Geometry{
		ScreenWidth:            cfg.ScreenWidth,
		ScreenHeight:           cfg.ScreenHeight,
		PitchVerticalPadding:   cfg.PitchVerticalPadding,
		PitchHorizontalPadding: cfg.PitchHorizontalPadding,
	}
}

func (gm *SessionManager) tickInterval() time.Duration {
	if gm.config.TickIntervalMs <= 0 {
		return TickInterval
	}
	return time.Duration(gm.config.TickIntervalMs) * time.Millisecond
}

func (gm *SessionManager) goalPause() time.Duration {
	if gm.config.GoalPauseMs <= 0 {
		return 0
	}
	return time.Duration(gm.config.GoalPauseMs) * time.Millisecond
}

// CreateGame starts a new session on geom. It returns the game and the plain host key,
// which is the only credential allowed to end the game and is never stored unhashed.
func (gm *SessionManager) CreateGame(geom Geometry) (*PitchGame, string, error) {
	if err := geom.Validate(); err != nil {
		return nil, "", err
	}

	gameID := generateGameID()
	gameToken := generateToken(16)
	hostKey := generateToken(16)

	hostKeyHash, err := auth.HashHostKey(hostKey)
	if err != nil {
		return nil, "", err
	}

	ttl := time.Duration(gm.config.PlayerTokenTTLMinutes) * time.Minute
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	player1Token, err := auth.IssuePlayerToken(gm.config.JWTSecret, gameToken, int(PaddleOne), ttl)
	if err != nil {
		return nil, "", err
	}
	player2Token, err := auth.IssuePlayerToken(gm.config.JWTSecret, gameToken, int(PaddleTwo), ttl)
	if err != nil {
		return nil, "", err
	}

	now := time.Now()
	g := &PitchGame{
		ID:             gameID,
		Token:          gameToken,
		PlayerOneToken: player1Token,
		PlayerTwoToken: player2Token,
		CreatedAt:      now,
		hostKeyHash:    hostKeyHash,
		lastActivity:   now,
		listeners:      make(map[int]EventListener),
	}

	session, err := NewPitchSession(geom,
		WithTickInterval(gm.tickInterval()),
		WithAutoResume(gm.goalPause()),
		WithGoalHandler(func(ev GoalEvent, st PitchState) { gm.onGoal(g, ev, st) }),
		WithResumeHandler(func(st PitchState) { gm.onResume(g, st) }),
	)
	if err != nil {
		return nil, "", err
	}
	g.Session = session

	// SessionID is fixed before the game becomes reachable through the maps.
	g.SessionID = gm.createSessionRecord(g, geom)

	gm.mu.Lock()
	gm.games[gameID] = g
	gm.tokens[gameToken] = gameID
	gm.mu.Unlock()

	if err := gm.savePitchGameToRedis(g, session.State(), StatusRunning); err != nil {
		log.Printf("[REDIS] Failed to cache game %s: %v", gameID, err)
	}
	gm.markActive(gameToken, now)

	session.Start()
	log.Printf("[PITCH] Game created: %s (token=%s session=%d)", gameID, gameToken, g.SessionID)
	return g, hostKey, nil
}

// GetGame retrieves an active game by ID
func (gm *SessionManager) GetGame(gameID string) (*PitchGame, error) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	g, ok := gm.games[gameID]
	if !ok {
		return nil, ErrGameNotFound
	}
	return g, nil
}

// GetGameByToken retrieves an active game by its public token
func (gm *SessionManager) GetGameByToken(token string) (*PitchGame, error) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	gameID, ok := gm.tokens[token]
	if !ok {
		return nil, ErrGameNotFound
	}
	g, ok := gm.games[gameID]
	if !ok {
		return nil, ErrGameNotFound
	}
	return g, nil
}

// ActiveGameCount returns the number of active games
func (gm *SessionManager) ActiveGameCount() int {
	gm.mu.RLock()
	defer gm.mu.RUnlock()
	return len(gm.games)
}

// Touch records player activity for the idle and expiry checks.
func (gm *SessionManager) Touch(gameID string) error {
	g, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}
	now := time.Now()
	g.touch(now)
	gm.markActive(g.Token, now)
	return nil
}

// EndGame stops a game at its host's request.
func (gm *SessionManager) EndGame(gameID string) error {
	return gm.endGame(gameID, ReasonEnded)
}

func (gm *SessionManager) endGame(gameID, reason string) error {
	gm.mu.Lock()
	g, ok := gm.games[gameID]
	if !ok {
		gm.mu.Unlock()
		return ErrGameNotFound
	}
	delete(gm.games, gameID)
	delete(gm.tokens, g.Token)
	gm.mu.Unlock()

	g.Session.Stop()
	final := g.Session.State()

	evType := EventSessionEnded
	if reason == ReasonExpired || reason == ReasonIdle {
		evType = EventSessionExpired
	}
	ev := Event{
		Type:      evType,
		GameID:    g.ID,
		GameToken: g.Token,
		Origin:    gm.instanceID,
		State:     &final,
		Reason:    reason,
	}
	g.emit(ev)

	g.storeSnapshot(final.Seq, true, func() {
		gm.CompleteSessionRecord(g.SessionID, final, reason)
		if err := gm.savePitchGameToRedis(g, final, StatusEnded); err != nil {
			log.Printf("[REDIS] Failed to cache final state of %s: %v", gameID, err)
		}
	})
	gm.clearIdle(g.Token)
	gm.publishEvent(ev)

	log.Printf("[PITCH] Game %s ended (%s) at %d-%d", gameID, reason, final.PlayerOneScore, final.PlayerTwoScore)
	return nil
}

// Shutdown ends every active game.
func (gm *SessionManager) Shutdown() {
	gm.mu.RLock()
	ids := make([]string, 0, len(gm.games))
	for id := range gm.games {
		ids = append(ids, id)
	}
	gm.mu.RUnlock()

	for _, id := range ids {
		gm.endGame(id, ReasonShutdown)
	}
}

// onGoal runs on the tick goroutine; storage work is handed to its own goroutine.
func (gm *SessionManager) onGoal(g *PitchGame, ev GoalEvent, st PitchState) {
	rec := models.GoalEvent{
		SessionID:      g.SessionID,
		Scorer:         int(ev.Scorer),
		Side:           string(ev.Side),
		PlayerOneScore: ev.PlayerOneScore,
		PlayerTwoScore: ev.PlayerTwoScore,
		BallX:          ev.BallOffset.X,
		BallY:          ev.BallOffset.Y,
		ScoredAt:       time.Now(),
	}
	g.addGoal(rec)

	out := Event{
		Type:      EventGoalScored,
		GameID:    g.ID,
		GameToken: g.Token,
		Origin:    gm.instanceID,
		Goal:      &ev,
		State:     &st,
	}
	g.emit(out)

	go func() {
		gm.RecordGoal(rec)
		g.storeSnapshot(st.Seq, false, func() {
			if err := gm.savePitchGameToRedis(g, st, StatusPaused); err != nil {
				log.Printf("[REDIS] Failed to cache game %s after goal: %v", g.ID, err)
			}
		})
		gm.publishEvent(out)
	}()
}

func (gm *SessionManager) onResume(g *PitchGame, st PitchState) {
	out := Event{
		Type:      EventGoalPauseEnded,
		GameID:    g.ID,
		GameToken: g.Token,
		Origin:    gm.instanceID,
		State:     &st,
	}
	g.emit(out)
	go gm.publishEvent(out)
}

// StartExpiryChecker ends games that saw no activity for SESSION_EXPIRY_MINUTES. It
// blocks until ctx is cancelled.
func (gm *SessionManager) StartExpiryChecker(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			gm.checkExpiredGames(now)
		}
	}
}

// checkExpiredGames ends every game idle since before now minus the expiry window and
// returns how many it ended.
func (gm *SessionManager) checkExpiredGames(now time.Time) int {
	if gm.config.SessionExpiryMinutes <= 0 {
		return 0
	}
	cutoff := now.Add(-time.Duration(gm.config.SessionExpiryMinutes) * time.Minute)

	gm.mu.RLock()
	var expired []string
	for id, g := range gm.games {
		if g.LastActivity().Before(cutoff) {
			expired = append(expired, id)
		}
	}
	gm.mu.RUnlock()

	n := 0
	for _, id := range expired {
		if err := gm.endGame(id, ReasonExpired); err == nil {
			n++
		}
	}
	if n > 0 {
		log.Printf("[EXPIRY] Expired %d inactive game(s)", n)
	}
	return n
}

// DismissGoalPause ends the goal pause of the game with this token. It reports false
// when the game was not paused.
func (gm *SessionManager) DismissGoalPause(token string) (bool, error) {
	g, err := gm.GetGameByToken(token)
	if err != nil {
		return false, err
	}
	if g.Session.Status() == StatusEnded {
		return false, ErrGameEnded
	}
	return g.Session.DismissGoalPause(), nil
}
