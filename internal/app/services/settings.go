package services

import (
	"time"

	"github.com/yigit/spmb/internal/app/distribution"
	"github.com/yigit/spmb/internal/config"
	"github.com/yigit/spmb/internal/pkg/helpers"
)

// Defaults applied when the admission config leaves a field empty
const (
	DefaultDraftTTL   = 24 * time.Hour
	DefaultClassCount = 6
)

// AdmissionSettings carries the admission cycle the services operate on
type AdmissionSettings struct {
	Institution       string
	AcademicYear      string
	GradeLevel        string
	GradeMarker       string
	DefaultClassCount int
	DraftTTL          time.Duration
	HistoryDepth      int
}

// NewAdmissionSettings reads the admission section of cfg
func NewAdmissionSettings(cfg *config.Config) AdmissionSettings {
	a := cfg.Admission
	return AdmissionSettings{
		Institution:       a.Institution,
		AcademicYear:      a.AcademicYear,
		GradeLevel:        a.GradeLevel,
		GradeMarker:       a.GradeMarker,
		DefaultClassCount: a.DefaultClassCount,
		DraftTTL:          helpers.ParseDuration(a.DraftTTL, DefaultDraftTTL),
		HistoryDepth:      a.HistoryDepth,
	}.withDefaults()
}

func (s AdmissionSettings) withDefaults() AdmissionSettings {
	if s.GradeLevel == "" {
		s.GradeLevel = "7"
	}
	if s.GradeMarker == "" {
		s.GradeMarker = distribution.DefaultGradeMarker
	}
	if s.DefaultClassCount <= 0 {
		s.DefaultClassCount = DefaultClassCount
	}
	if s.DraftTTL <= 0 {
		s.DraftTTL = DefaultDraftTTL
	}
	if s.HistoryDepth <= 0 {
		s.HistoryDepth = distribution.DefaultHistoryDepth
	}
	return s
}

// yearOrDefault returns year, or the configured academic year when empty
func (s AdmissionSettings) yearOrDefault(year string) string {
	if year == "" {
		return s.AcademicYear
	}
	return year
}
