package main

import (
	"log"
	"os"

	"github.com/tkabila/chekechea/core"
	"github.com/tkabila/chekechea/core/billing"
	emailsvc "github.com/tkabila/chekechea/services/email"
	logsvc "github.com/tkabila/chekechea/services/logger"
	"github.com/tkabila/chekechea/storage/database"
	"github.com/tkabila/chekechea/storage/database/sqlrepos"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()

	rollbarLogger := logsvc.NewRollbarLogger(logger, conf)
	rollbarLogger.Enable(!conf.Debug)

	// set up DB
	db, err := database.Open(conf)
	errAndDie(err)
	defer db.Close()
	errAndDie(db.Ping())

	// set up services
	childRepo := sqlrepos.NewChildRepository(db)
	attendanceRepo := sqlrepos.NewAttendanceRepository(db)
	invoiceRepo := sqlrepos.NewInvoiceRepository(db)
	billingSvc := billing.NewService(
		db, invoiceRepo, attendanceRepo, childRepo,
		emailsvc.NewConsoleService(conf), conf, rollbarLogger,
	)

	// start CLI
	cli := commandLine{
		db:         db.DB,
		billingSvc: billingSvc,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
