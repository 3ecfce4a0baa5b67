package main

import (
	"context"
	"fmt"
	"time"

	"github.com/Yuki-gilty/drone-manager/inventory"
	"github.com/Yuki-gilty/drone-manager/models"
)

// seedDemo fills store with a small fleet whose history ends today, so the
// current month's calendar has something on it.
func seedDemo(ctx context.Context, store *inventory.Store) error {
	today := time.Now()
	day := func(offset int) string {
		return today.AddDate(0, 0, offset).Format(models.DateLayout)
	}

	tmotor, err := store.Manufacturers.Add(ctx, models.ManufacturerInput{Name: "T-Motor"})
	if err != nil {
		return fmt.Errorf("seed manufacturer: %w", err)
	}
	if _, err := store.Manufacturers.Add(ctx, models.ManufacturerInput{Name: "BetaFPV"}); err != nil {
		return fmt.Errorf("seed manufacturer: %w", err)
	}

	fiveInch, err := store.DroneTypes.Add(ctx, models.DroneTypeInput{
		Name: "5inch",
		DefaultParts: []models.DefaultPart{
			{Name: "Frame"},
			{Name: "Motor", ManufacturerID: &tmotor.ID},
			{Name: "Props"},
		},
	})
	if err != nil {
		return fmt.Errorf("seed drone type: %w", err)
	}
	whoop, err := store.DroneTypes.Add(ctx, models.DroneTypeInput{Name: "Whoop"})
	if err != nil {
		return fmt.Errorf("seed drone type: %w", err)
	}

	racer, err := store.Drones.Add(ctx, models.DroneInput{Name: "Racer", Type: fiveInch.ID, StartDate: day(-60)})
	if err != nil {
		return fmt.Errorf("seed drone: %w", err)
	}
	if _, err := store.Drones.Add(ctx, models.DroneInput{Name: "Tiny", Type: whoop.ID, StartDate: day(-20), Status: models.DroneUnstable}); err != nil {
		return fmt.Errorf("seed drone: %w", err)
	}

	parts := store.Parts.List(ctx, inventory.PartFilter{DroneID: racer.ID})
	if parts.Err != nil {
		return fmt.Errorf("seed parts: %w", parts.Err)
	}
	for _, p := range parts.Items {
		if p.Name != "Props" {
			continue
		}
		if _, err := store.Parts.AddReplacement(ctx, p.ID, models.ReplacementInput{Date: day(-3), Description: "Swapped after crash"}); err != nil {
			return fmt.Errorf("seed replacement: %w", err)
		}
		if _, err := store.Repairs.Add(ctx, models.RepairInput{DroneID: racer.ID, PartID: &p.ID, Date: day(-3), Description: "Bent prop"}); err != nil {
			return fmt.Errorf("seed repair: %w", err)
		}
	}
	if _, err := store.Repairs.Add(ctx, models.RepairInput{DroneID: racer.ID, Date: day(-10), Description: "Re-soldered XT60"}); err != nil {
		return fmt.Errorf("seed repair: %w", err)
	}

	for _, offset := range []int{-10, -3, 0} {
		note := "Field session"
		if _, err := store.PracticeDays.Add(ctx, models.PracticeDayInput{Date: day(offset), Note: &note}); err != nil {
			return fmt.Errorf("seed practice day: %w", err)
		}
	}
	return nil
}
