// internal/match/bot_job.go
package match

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/jason-s-yu/tabletop/internal/game"
	"github.com/sirupsen/logrus"
)

// botJob is the single pending bot move of a room. version pins the state the
// job was scheduled for; any other version makes the job stale.
type botJob struct {
	timer   *time.Timer
	cancel  context.CancelFunc
	version int
}

// scheduleBotUnsafe arms a bot move after a randomized think delay when the seat
// to move belongs to the bot.
func (room *Room) scheduleBotUnsafe() {
	if room.bot == nil || room.status != StatusInProgress || room.botJob != nil {
		return
	}
	idx := room.state.CurrentSeat()
	pos := room.seatPosUnsafe(idx)
	if pos < 0 || !room.seats[pos].player.IsBot {
		return
	}
	job := &botJob{version: room.version}
	job.timer = time.AfterFunc(room.thinkDelay(), func() { room.runBot(job, idx) })
	room.botJob = job
}

func (room *Room) thinkDelay() time.Duration {
	lo, hi := room.settings.BotThinkMin, room.settings.BotThinkMax
	if hi <= lo {
		return lo
	}
	return lo + time.Duration(rand.Int64N(int64(hi-lo)+1))
}

func (room *Room) cancelBotUnsafe() {
	if room.botJob == nil {
		return
	}
	room.botJob.timer.Stop()
	if room.botJob.cancel != nil {
		room.botJob.cancel()
	}
	room.botJob = nil
}

func (room *Room) jobLiveUnsafe(job *botJob) bool {
	return room.botJob == job && room.status == StatusInProgress && room.version == job.version
}

// runBot searches outside the room lock and applies the result only if nothing
// changed meanwhile. A failed search or a rejected move forfeits the bot's seat.
func (room *Room) runBot(job *botJob, idx int) {
	room.mu.Lock()
	if !room.jobLiveUnsafe(job) {
		room.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	job.cancel = cancel
	state, budget := room.state, room.settings.BotBudget
	room.mu.Unlock()

	action, err := room.chooseAction(ctx, state, idx, budget)

	room.mu.Lock()
	defer room.mu.Unlock()
	if !room.jobLiveUnsafe(job) {
		return
	}
	room.botJob = nil
	if err == nil {
		err = room.applyUnsafe(idx, action, "bot")
	}
	if err != nil {
		room.logger.WithError(err).WithFields(logrus.Fields{"seat": idx, "version": job.version}).Warn("bot failed to move, forfeiting")
		room.forfeitUnsafe(idx, EndBotForfeit)
	}
}

// armLastCallUnsafe starts the deadline for a seat holding one card that has not
// announced it. Missing the deadline forfeits the match for that seat. A deadline
// already running for the same seat is left alone.
func (room *Room) armLastCallUnsafe() {
	idx, pending := room.pendingLastCallUnsafe()
	if room.lastCallTimer != nil {
		if pending && idx == room.lastCallSeat {
			return
		}
		room.lastCallTimer.Stop()
		room.lastCallTimer = nil
	}
	if !pending {
		return
	}
	var timer *time.Timer
	timer = time.AfterFunc(room.settings.LastCallWindow, func() {
		room.mu.Lock()
		defer room.mu.Unlock()
		if room.lastCallTimer != timer || room.status != StatusInProgress {
			return
		}
		room.lastCallTimer = nil
		if seat, still := room.pendingLastCallUnsafe(); !still || seat != idx {
			return
		}
		room.logger.WithField("seat", idx).Info("last card not announced in time")
		room.forfeitUnsafe(idx, EndLastCall)
	})
	room.lastCallTimer = timer
	room.lastCallSeat = idx
}

func (room *Room) pendingLastCallUnsafe() (int, bool) {
	lc, ok := room.state.(game.LastCallState)
	if !ok {
		return 0, false
	}
	return lc.PendingLastCall()
}

// chooseAction runs the bot search. A panic in the search is reported as an error.
func (room *Room) chooseAction(ctx context.Context, state game.State, idx int, budget time.Duration) (action json.RawMessage, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			room.logger.WithField("panic", rec).Error("bot search panicked")
			action, err = nil, fmt.Errorf("bot search: %v", rec)
		}
	}()
	return room.bot.ChooseAction(ctx, state, idx, budget)
}
