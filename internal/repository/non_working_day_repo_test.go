package repository_test

import (
	"context"
	"testing"

	"presence-calendar/internal/models"
	"presence-calendar/internal/repository"
)

func nonWorkingDay(date string) models.NonWorkingDay {
	d := models.MustParseDay(date)
	return models.NonWorkingDay{Date: d, Year: d.Year, Month: int(d.Month), Day: d.Day}
}

func TestNonWorkingDayRepository_ReplaceYear(t *testing.T) {
	repo, err := repository.NewGormNonWorkingDayRepository(setupTestDB(t))
	if err != nil {
		t.Fatalf("NewGormNonWorkingDayRepository failed: %v", err)
	}
	ctx := context.Background()

	first := []models.NonWorkingDay{
		nonWorkingDay("2024-03-09"),
		nonWorkingDay("2024-03-08"),
		nonWorkingDay("2024-05-01"),
	}
	if err := repo.ReplaceYear(ctx, 2024, first); err != nil {
		t.Fatalf("ReplaceYear failed: %v", err)
	}
	if err := repo.ReplaceYear(ctx, 2025, []models.NonWorkingDay{nonWorkingDay("2025-01-01")}); err != nil {
		t.Fatalf("ReplaceYear 2025 failed: %v", err)
	}

	march, err := repo.GetByYearMonth(ctx, 2024, 3)
	if err != nil {
		t.Fatalf("GetByYearMonth failed: %v", err)
	}
	if len(march) != 2 || march[0].Day != 8 || march[1].Day != 9 {
		t.Errorf("expected March 8 and 9 in order, got %+v", march)
	}

	if err := repo.ReplaceYear(ctx, 2024, []models.NonWorkingDay{nonWorkingDay("2024-06-12")}); err != nil {
		t.Fatalf("second ReplaceYear failed: %v", err)
	}
	year, err := repo.GetByYear(ctx, 2024)
	if err != nil {
		t.Fatalf("GetByYear failed: %v", err)
	}
	if len(year) != 1 || year[0].Date != models.MustParseDay("2024-06-12") {
		t.Errorf("expected only June 12 after replace, got %+v", year)
	}

	other, err := repo.GetByYear(ctx, 2025)
	if err != nil || len(other) != 1 {
		t.Errorf("replacing 2024 must keep 2025: %+v, %v", other, err)
	}

	holiday, err := repo.IsNonWorkingDay(ctx, models.MustParseDay("2025-01-01"))
	if err != nil || !holiday {
		t.Errorf("expected 2025-01-01 to be non-working: %v, %v", holiday, err)
	}
	workday, err := repo.IsNonWorkingDay(ctx, models.MustParseDay("2024-03-08"))
	if err != nil || workday {
		t.Errorf("expected 2024-03-08 to be removed by replace: %v, %v", workday, err)
	}
}
