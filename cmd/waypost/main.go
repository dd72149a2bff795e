package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/gowander/waypost/internal/booking"
	"github.com/gowander/waypost/internal/clock"
	"github.com/gowander/waypost/internal/config"
	"github.com/gowander/waypost/internal/invoice"
	"github.com/gowander/waypost/internal/migration"
	"github.com/gowander/waypost/internal/notification"
	"github.com/gowander/waypost/internal/observability"
	"github.com/gowander/waypost/internal/providers/email"
	"github.com/gowander/waypost/internal/providers/pdf"
	"github.com/gowander/waypost/internal/ratelimit"
	"github.com/gowander/waypost/internal/scheduler"
	"github.com/gowander/waypost/internal/seed"
	"github.com/gowander/waypost/internal/server"
	"github.com/gowander/waypost/internal/settlement"
	"github.com/gowander/waypost/internal/tour"
	"github.com/gowander/waypost/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(registerSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		ratelimit.Module,

		email.Module,
		pdf.Module,

		tour.Module,
		booking.Module,
		notification.Module,
		settlement.Module,
		invoice.Module,
		scheduler.Module,
		seed.Module,

		server.Module,
	)
	app.Run()
}

func registerSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
