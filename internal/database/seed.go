package database

import (
	"fmt"
	"log"

	"payroll/internal/model"
	"payroll/internal/tax"

	"gorm.io/gorm"
)

// SeedTaxBrackets inserts the statutory Tunisian IRPP table when no active TN
// IRPP rows exist yet. After seeding the database is the single source of
// truth; admins manage the table through the API.
func SeedTaxBrackets(db *gorm.DB) error {
	var count int64
	err := db.Model(&model.TaxBracket{}).
		Where("country = ? AND tax_type = ? AND is_active = true", "TN", model.TaxTypeIRPP).
		Count(&count).Error
	if err != nil {
		return fmt.Errorf("failed to count tax brackets: %w", err)
	}
	if count > 0 {
		return nil
	}

	rows := make([]model.TaxBracket, 0, len(tax.TunisiaIRPP2025()))
	for i, b := range tax.TunisiaIRPP2025() {
		rows = append(rows, model.TaxBracket{
			Country:     "TN",
			TaxType:     model.TaxTypeIRPP,
			Rate:        b.Rate,
			MinBracket:  b.Lower,
			MaxBracket:  b.Upper,
			Description: fmt.Sprintf("IRPP 2025 bracket %d", i+1),
			IsActive:    true,
		})
	}

	if err := db.Create(&rows).Error; err != nil {
		return fmt.Errorf("failed to seed tax brackets: %w", err)
	}

	log.Printf("Seeded %d TN IRPP tax brackets", len(rows))
	return nil
}
