// The reminder worker is a cron-style batch entry point: it generates and
// drains payment reminder tasks once, then exits. Per-item failures are
// logged inside the run; the exit code reflects whether the batch as a whole
// could execute.
package main

import (
	"os"

	"github.com/gofiber/fiber/v2/log"

	"github.com/submate-app/SubMate/app/repository"
	"github.com/submate-app/SubMate/internal/pkg/alerts"
	"github.com/submate-app/SubMate/internal/pkg/database"
	"github.com/submate-app/SubMate/internal/pkg/env"
	"github.com/submate-app/SubMate/internal/pkg/mail"
	"github.com/submate-app/SubMate/internal/pkg/reminder"
)

func main() {
	env.SetupEnvFile()
	database.SetupDatabase()
	repository.InitializeFactory(database.GetDB())

	repos := repository.GetGlobalRepositories()
	notifier := alerts.NewNotifier(repos.User, mail.NewSMTPMailer())
	worker := reminder.NewWorker(repos, notifier)

	if err := worker.Run(); err != nil {
		log.Errorf("[ReminderWorker] %v", err)
		os.Exit(1)
	}
}
