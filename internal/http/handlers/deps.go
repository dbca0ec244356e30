package handlers

import (
	"campusmarket/internal/config"
	"campusmarket/internal/repos"
	"campusmarket/internal/retailers"
	"campusmarket/internal/services"

	"github.com/jmoiron/sqlx"
)

type Deps struct {
	ListingHandler *ListingHandler
	MessageHandler *MessageHandler
	DealsHandler   *DealsHandler
	ProfileHandler *ProfileHandler

	Deals *services.DealsService
}

func NewDeps(db *sqlx.DB, cfg config.Config, auth *services.AuthService) *Deps {
	userRepo := auth.Users
	listingRepo := repos.NewListingRepo(db)
	msgRepo := repos.NewMessageRepo(db)
	dealRepo := repos.NewDealRepo(db)

	listingSvc := services.NewListingService(listingRepo)
	msgSvc := services.NewMessageService(msgRepo, userRepo)

	// Walmart first; Amazon only when Walmart yields nothing.
	agg := services.NewAggregator(dealRepo,
		retailers.NewWalmart(cfg.WalmartAPIKey, cfg.WalmartBaseURL),
		retailers.NewAmazon(cfg.AWSAccessKey, cfg.AWSSecretKey, cfg.AmazonAssociateTag),
	)
	dealsSvc := services.NewDealsService(dealRepo, agg, cfg.DealsCacheTTL)

	return &Deps{
		ListingHandler: &ListingHandler{Listings: listingSvc, Deals: dealsSvc},
		MessageHandler: &MessageHandler{Messages: msgSvc, Listings: listingSvc},
		DealsHandler:   &DealsHandler{Deals: dealsSvc},
		ProfileHandler: &ProfileHandler{Auth: auth, Listings: listingSvc},
		Deals:          dealsSvc,
	}
}
