package api

import (
	"net/http"

	"github.com/KAsare1/Gymhub-server/cmd/utils"
	"github.com/KAsare1/Gymhub-server/config"
	"github.com/KAsare1/Gymhub-server/service/admin"
	"github.com/KAsare1/Gymhub-server/service/client"
	"github.com/KAsare1/Gymhub-server/service/consent"
	"github.com/KAsare1/Gymhub-server/service/notifications"
	"github.com/KAsare1/Gymhub-server/service/receipt"
	"github.com/KAsare1/Gymhub-server/service/subscription"
	"github.com/KAsare1/Gymhub-server/service/tenancy"
	"github.com/KAsare1/Gymhub-server/service/user"
	"github.com/KAsare1/Gymhub-server/storage"
	"github.com/KAsare1/Gymhub-server/store"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Services is the wired application graph. The HTTP server and the CLI share it.
type Services struct {
	Store    *store.Store
	Tokens   *utils.TokenIssuer
	Resolver *tenancy.Resolver
	Gate     *subscription.Gate
	Issuer   *receipt.Issuer
	Notifier *notification.Notifier
	Clients  *client.Manager
	Consent  *consent.Gateway
	Accounts *user.Service
	Admin    *admin.Service
}

func NewServices(cfg *config.Config, db *gorm.DB, logger *zap.Logger) *Services {
	st := store.New(db)
	httpClient := &http.Client{Timeout: cfg.Pipeline.Timeout}
	objects := storage.NewS3Store(cfg.Storage, logger)
	tokens := utils.NewTokenIssuer(cfg.Auth.SecretKey)
	resolver := tenancy.NewResolver(st)
	gate := subscription.NewGate(st)

	issuer := receipt.NewIssuer(st, receipt.NewPDFRenderer(), objects, receipt.NewHTTPLogoFetcher(httpClient),
		cfg.Storage.ReceiptNamespace, cfg.Pipeline.Timeout, logger)
	notifier := notification.NewNotifier(receiptChannels(cfg, httpClient, logger),
		notification.NewPusher(st, logger), cfg.Pipeline.Timeout, logger)

	return &Services{
		Store:    st,
		Tokens:   tokens,
		Resolver: resolver,
		Gate:     gate,
		Issuer:   issuer,
		Notifier: notifier,
		Clients: client.NewManager(st, gate, issuer, notifier, objects, client.Options{
			PublicURL:      cfg.Server.PublicURL,
			PhotoNamespace: cfg.Storage.PhotoNamespace,
		}, logger),
		Consent:  consent.NewGateway(st, issuer, notifier, 2*cfg.Pipeline.Timeout, logger),
		Accounts: user.NewService(st, resolver, tokens, cfg.Auth, logger),
		Admin:    admin.NewService(st, tokens, cfg.Auth, logger),
	}
}

// receiptChannels returns the senders whose credentials are configured.
func receiptChannels(cfg *config.Config, httpClient *http.Client, logger *zap.Logger) []notification.Sender {
	var senders []notification.Sender
	if cfg.WhatsApp.Enabled() {
		senders = append(senders, notification.NewWhatsAppSender(cfg.WhatsApp, httpClient, logger))
	} else {
		logger.Info("WhatsApp channel disabled: WHATSAPP_TOKEN or WHATSAPP_PHONE_NUMBER_ID not set")
	}
	if cfg.SMTP.Enabled() {
		senders = append(senders, notification.NewEmailSender(cfg.SMTP))
	} else {
		logger.Info("email channel disabled: SMTP_HOST or SMTP_USER not set")
	}
	return senders
}
