package main

import (
	"log"

	"moderation-bot/bot"
	"moderation-bot/config"
	"moderation-bot/handlers"
	"moderation-bot/model"
	"moderation-bot/moderation"
	"moderation-bot/utils/database"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	db, err := database.Init(cfg.DBPath)
	if err != nil {
		log.Fatalf("Error initializing database: %v", err)
	}
	defer db.Close()

	b, err := bot.New(cfg, db)
	if err != nil {
		log.Fatalf("Error creating bot: %v", err)
	}
	defer b.Close()

	// Resolve the bot's own user up front; the moderation layer needs it for
	// hierarchy checks before the first gateway event arrives.
	me, err := b.Session.User("@me")
	if err != nil {
		log.Fatalf("Error fetching bot user: %v", err)
	}

	actions := moderation.NewActions(b.Session, db, b.Scheduler, b.Audit, me.ID)
	reconciler := moderation.NewReconciler(b.Session, db, b.Scheduler, me.ID)

	b.Scheduler.Handle(model.EventTimeoutExtend, reconciler.HandleTimeoutExtend)
	b.Scheduler.Handle(model.EventTempban, reconciler.HandleTempban)

	handlers.Register(b, actions, reconciler)

	b.Run()
}
