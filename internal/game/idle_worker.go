package game

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// IdleSetKey is the Redis sorted set of games scored by the unix time they go idle.
const IdleSetKey = "pitch_idle"

func idleMember(token string) string {
	return "g:" + token
}

func lastActiveKey(member string) string {
	return "last_active:" + member
}

// markActive stamps the game's last activity and pushes its idle deadline forward.
func (gm *SessionManager) markActive(token string, now time.Time) {
	if gm.rdb == nil || gm.config.IdleTimeoutSeconds <= 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	member := idleMember(token)
	timeout := time.Duration(gm.config.IdleTimeoutSeconds) * time.Second
	deadline := now.Add(timeout).Unix()

	pipe := gm.rdb.Pipeline()
	pipe.Set(ctx, lastActiveKey(member), now.Unix(), 2*timeout)
	pipe.ZAdd(ctx, IdleSetKey, redis.Z{Score: float64(deadline), Member: member})
	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("[IDLE] Failed to mark %s active: %v", token, err)
	}
}

func (gm *SessionManager) clearIdle(token string) {
	if gm.rdb == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	member := idleMember(token)
	gm.rdb.ZRem(ctx, IdleSetKey, member)
	gm.rdb.Del(ctx, lastActiveKey(member))
}

// StartIdleWorker ends games whose players stopped sending pointer events, using the
// Redis sorted set so that several instances can share the work.
func (gm *SessionManager) StartIdleWorker(ctx context.Context) {
	if gm.rdb == nil || gm.config == nil || gm.config.IdleTimeoutSeconds <= 0 {
		log.Println("[IDLE] Redis or idle timeout missing; idle worker not started")
		return
	}

	poll := time.Duration(gm.config.IdleWorkerPollSeconds) * time.Second
	if poll <= 0 {
		poll = 5 * time.Second
	}

	log.Println("[IDLE] Idle worker started")
	go func() {
		ticker := time.NewTicker(poll)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Println("[IDLE] Idle worker stopping")
				return
			case <-ticker.C:
				gm.processIdle(ctx, time.Now())
			}
		}
	}()
}

func (gm *SessionManager) processIdle(ctx context.Context, now time.Time) {
	members, err := gm.rdb.ZRangeByScore(ctx, IdleSetKey, &redis.ZRangeBy{Min: "-inf", Max: fmt.Sprintf("%d", now.Unix())}).Result()
	if err != nil {
		log.Printf("[IDLE] Failed to fetch idle games: %v", err)
		return
	}

	timeout := int64(gm.config.IdleTimeoutSeconds)
	for _, m := range members {
		token := parseMember(m)
		if token == "" {
			gm.rdb.ZRem(ctx, IdleSetKey, m)
			continue
		}

		last, err := gm.rdb.Get(ctx, lastActiveKey(m)).Result()
		g, gerr := gm.GetGameByToken(token)
		step, lastTs := idleDecision(now, last, err, gerr == nil, timeout)

		switch step {
		case idleSkip:
			if err != nil && !errors.Is(err, redis.Nil) {
				log.Printf("[IDLE] Failed to read activity of %s: %v", token, err)
			}
			continue
		case idleDrop:
			gm.rdb.ZRem(ctx, IdleSetKey, m)
			continue
		}

		// Attempt to remove (race-safe)
		if removed, _ := gm.rdb.ZRem(ctx, IdleSetKey, m).Result(); removed == 0 {
			continue
		}
		if step == idleRevert {
			// Activity raced the claim; put the deadline back.
			gm.rdb.ZAdd(ctx, IdleSetKey, redis.Z{Score: float64(lastTs + timeout), Member: m})
			continue
		}

		log.Printf("[IDLE] Ending game %s after %ds without input", g.ID, now.Unix()-lastTs)
		gm.endGame(g.ID, ReasonIdle)
	}
}

type idleStep int

const (
	idleSkip idleStep = iota
	idleDrop
	idleRevert
	idleEnd
)

// idleDecision picks what to do with a due member given its activity stamp, the error
// reading it, and whether this instance hosts the game. Only the hosting instance can
// end a game; members whose stamp has expired belong to no live instance and are
// dropped. A failed read leaves the member for the next poll.
func idleDecision(now time.Time, last string, getErr error, hosted bool, timeout int64) (idleStep, int64) {
	missing := errors.Is(getErr, redis.Nil)
	if getErr != nil && !missing {
		return idleSkip, 0
	}
	if !hosted {
		if missing {
			return idleDrop, 0
		}
		return idleSkip, 0
	}

	var lastTs int64
	if !missing {
		lastTs, _ = strconv.ParseInt(last, 10, 64)
	}
	if now.Unix()-lastTs < timeout {
		return idleRevert, lastTs
	}
	return idleEnd, lastTs
}

// parseMember expects member format g:<gameToken>
func parseMember(m string) string {
	token, ok := strings.CutPrefix(m, "g:")
	if !ok || token == "" || strings.Contains(token, ":") {
		return ""
	}
	return token
}
