package services

import (
	"log/slog"
)

const MealsChangedKind = "meals.changed"

// Mutation ops carried by change events.
const (
	OpCreated   = "created"
	OpUpdated   = "updated"
	OpDeleted   = "deleted"
	OpConfirmed = "confirmed"
)

type ChangeEvent struct {
	Kind string `json:"kind"`
	Op   string `json:"op"`
	Date string `json:"date"`
}

// MealNotifier receives a signal after every committed meal mutation.
type MealNotifier interface {
	MealsChanged(userID, op, date string)
}

type ChangeBus struct {
	rt  *RealtimeHub
	log *slog.Logger
}

func NewChangeBus(rt *RealtimeHub, log *slog.Logger) *ChangeBus {
	if log == nil {
		log = slog.Default()
	}
	return &ChangeBus{rt: rt, log: log}
}

func (b *ChangeBus) MealsChanged(userID, op, date string) {
	if b == nil || b.rt == nil {
		return
	}
	ev := ChangeEvent{Kind: MealsChangedKind, Op: op, Date: date}
	if err := b.rt.Broadcast(userID, ev); err != nil {
		b.log.Warn("broadcast meal change", "user_id", userID, "op", op, "err", err)
	}
}

type nopNotifier struct{}

func (nopNotifier) MealsChanged(string, string, string) {}
