// Package reports persists final evaluation reports. Unlike the live
// session state, reports are permanent records, so they go to a relational
// database with scalar columns for recruiter queries alongside the full
// serialized report.
package reports

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/Sopan777/ENIGMA-2.0-TEAM-TURING/internal/models"
)

// Store handles report storage and retrieval
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&models.ReportRecord{}); err != nil {
		return nil, fmt.Errorf("migrate report tables: %w", err)
	}
	return &Store{db: db}, nil
}

// Save stores one final report for a session.
func (s *Store) Save(sessionID, joinCode, candidateName string, report *models.FinalReport, terminated bool) (*models.ReportRecord, error) {
	body, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("encode report: %w", err)
	}

	record := &models.ReportRecord{
		SessionID:        sessionID,
		JoinCode:         joinCode,
		CandidateName:    candidateName,
		ReportJSON:       string(body),
		FinalScore:       report.Scores.FinalScorePercent,
		IntegrityScore:   report.Scores.IntegrityScore,
		PerformanceLevel: report.PerformanceLevel,
		Terminated:       terminated,
		CreatedAt:        time.Now().UTC(),
	}

	if err := s.db.Create(record).Error; err != nil {
		return nil, fmt.Errorf("store report: %w", err)
	}
	return record, nil
}

// BySession returns the most recent report stored for a session.
func (s *Store) BySession(sessionID string) (*models.ReportRecord, error) {
	var record models.ReportRecord
	err := s.db.Where("session_id = ?", sessionID).Order("created_at DESC").First(&record).Error
	if err != nil {
		return nil, fmt.Errorf("load report: %w", err)
	}
	return &record, nil
}

// Recent lists the newest reports, most recent first.
func (s *Store) Recent(limit int) ([]models.ReportRecord, error) {
	var records []models.ReportRecord
	query := s.db.Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	return records, nil
}

// Decode unpacks the serialized report out of a record.
func Decode(record *models.ReportRecord) (*models.FinalReport, error) {
	var report models.FinalReport
	if err := json.Unmarshal([]byte(record.ReportJSON), &report); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	return &report, nil
}
