package services

import (
	"bytes"
	"context"
	"fmt"

	"github.com/quizdash/quiz-service/internal/utils"
	"github.com/xuri/excelize/v2"
)

type exportService struct {
	leaderboard LeaderboardService
	logger      utils.Logger
}

func NewExportService(leaderboard LeaderboardService, logger utils.Logger) ExportService {
	return &exportService{leaderboard: leaderboard, logger: logger}
}

// LeaderboardXLSX renders the current standings as a spreadsheet for admin
// download. Rows come from the leaderboard service, so ordering matches the
// API exactly.
func (s *exportService) LeaderboardXLSX(ctx context.Context) ([]byte, error) {
	entries, err := s.leaderboard.Leaderboard(ctx)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			s.logger.Warn("failed to close workbook", "error", closeErr)
		}
	}()

	const sheet = "Leaderboard"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to drop default sheet: %w", err)
	}

	headers := []string{"Rank", "Name", "Email", "Mobile", "Total Score", "Total Time (s)", "Games Played"}
	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return nil, err
		}
	}

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		_ = f.SetRowStyle(sheet, 1, 1, style)
	}

	for i, entry := range entries {
		mobile := ""
		if entry.Mobile != nil {
			mobile = *entry.Mobile
		}
		values := []interface{}{
			entry.Rank,
			entry.FullName,
			entry.Email,
			mobile,
			entry.TotalScore,
			entry.TotalTime,
			entry.GamesPlayed,
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, err
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}
