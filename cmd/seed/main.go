// Command seed provisions the reference data the payment core reads:
// banks with their CliQ deep-link schemes, card BIN tables, offers,
// method flags and a demo retailer with a hashed API secret.
package main

import (
	"log"
	"os"
	"time"

	"qirsh/internal/config"
	"qirsh/internal/models"
	"qirsh/internal/repositories"

	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	config.LoadEnv()

	retailerSecret := os.Getenv("RETAILER_API_SECRET")
	if retailerSecret == "" {
		log.Fatal("RETAILER_API_SECRET must be set in environment")
	}

	if err := repositories.InitDB(); err != nil {
		log.Fatalf("failed to initialize storage: %v", err)
	}
	defer repositories.CloseDB()

	db := repositories.DB

	banks := []models.Bank{
		{Name: "Arab Bank", Slug: "arab-bank", CliqScheme: "arabbank", CliqHost: "cliq.arabbank.jo", SupportsCliq: true},
		{Name: "Housing Bank", Slug: "housing-bank", CliqScheme: "hbtf", CliqHost: "pay.hbtf.jo", SupportsCliq: true},
		{Name: "Cairo Amman Bank", Slug: "cairo-amman", SupportsCliq: true},
		{Name: "Jordan Kuwait Bank", Slug: "jkb", CliqScheme: "jkbmobile", CliqHost: "cliq.jkb.jo", SupportsCliq: true},
	}
	for i := range banks {
		if err := db.Where("slug = ?", banks[i].Slug).FirstOrCreate(&banks[i]).Error; err != nil {
			log.Fatalf("failed to seed bank %s: %v", banks[i].Slug, err)
		}
	}

	cardTypes := []models.CardType{
		{BankID: banks[0].ID, Name: "Arab Bank Visa", BinPrefixes: pq.StringArray{"411111", "428485"}, Active: true},
		{BankID: banks[1].ID, Name: "Housing Bank Mastercard", BinPrefixes: pq.StringArray{"512345", "535522"}, Active: true},
		{BankID: banks[3].ID, Name: "JKB World Elite", BinPrefixes: pq.StringArray{"558848"}, Active: true},
	}
	for i := range cardTypes {
		if err := db.Where("name = ?", cardTypes[i].Name).FirstOrCreate(&cardTypes[i]).Error; err != nil {
			log.Fatalf("failed to seed card type %s: %v", cardTypes[i].Name, err)
		}
	}

	maxDiscount := 5.0
	maxClaims := 1000
	offers := []models.BankOffer{
		{
			BankID:      banks[0].ID,
			Title:       "15% off with Arab Bank cards",
			OfferType:   models.OfferTypePercentage,
			Value:       15,
			AllBranches: true,
			Active:      true,
			StartDate:   time.Now().AddDate(0, -1, 0),
			EndDate:     time.Now().AddDate(0, 2, 0),
		},
		{
			BankID:            banks[1].ID,
			Title:             "Housing Bank weekend deal",
			OfferType:         models.OfferTypePercentage,
			Value:             50,
			MaxDiscountAmount: &maxDiscount,
			MaxClaims:         &maxClaims,
			AllBranches:       true,
			Active:            true,
			StartDate:         time.Now().AddDate(0, -1, 0),
			EndDate:           time.Now().AddDate(0, 1, 0),
		},
	}
	for i := range offers {
		if err := db.Where("title = ?", offers[i].Title).FirstOrCreate(&offers[i]).Error; err != nil {
			log.Fatalf("failed to seed offer %q: %v", offers[i].Title, err)
		}
	}

	for _, method := range []string{models.MethodNewCard, models.MethodSavedCard, models.MethodWallet, models.MethodCliq} {
		setting := models.PaymentMethodSetting{Method: method, Enabled: true}
		if err := db.Where("method = ?", method).FirstOrCreate(&setting).Error; err != nil {
			log.Fatalf("failed to seed method flag %s: %v", method, err)
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(retailerSecret), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("failed to hash retailer secret:", err)
	}
	retailer := models.Retailer{
		Name:               "Demo Retailer",
		ReceiverAlias:      "DEMORETAIL",
		APISecretHash:      string(hash),
		SubscriptionActive: true,
	}
	if err := db.Where("name = ?", retailer.Name).FirstOrCreate(&retailer).Error; err != nil {
		log.Fatalf("failed to seed retailer: %v", err)
	}

	log.Println("seed completed")
}
