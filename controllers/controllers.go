package controllers

import (
	"log/slog"
	"time"

	"invoice-backend/cache"
	"invoice-backend/mailer"
	"invoice-backend/pdf"
)

// Deps are the collaborators the handlers use besides the database.
type Deps struct {
	Mailer      mailer.Sender
	PDFCache    cache.Store
	PDFCacheTTL time.Duration
	Renderer    *pdf.Renderer
	// Domain prefixes the public invoice links sent by email.
	Domain string
	Now    func() time.Time
	Logger *slog.Logger
}

var deps = Deps{
	PDFCache: cache.Nop{},
	Renderer: pdf.NewRenderer(),
	Now:      time.Now,
	Logger:   slog.Default(),
}

// Setup installs d; zero fields keep their defaults.
func Setup(d Deps) {
	if d.Mailer != nil {
		deps.Mailer = d.Mailer
	}
	if d.PDFCache != nil {
		deps.PDFCache = d.PDFCache
	}
	if d.PDFCacheTTL > 0 {
		deps.PDFCacheTTL = d.PDFCacheTTL
	}
	if d.Renderer != nil {
		deps.Renderer = d.Renderer
	}
	if d.Domain != "" {
		deps.Domain = d.Domain
	}
	if d.Now != nil {
		deps.Now = d.Now
	}
	if d.Logger != nil {
		deps.Logger = d.Logger
	}
}
