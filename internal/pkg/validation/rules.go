package validation

import (
	"regexp"
	"strconv"

	"github.com/go-playground/validator/v10"
)

// Validation rule patterns
var (
	// Academic year pair, e.g. 2025/2026
	AcademicYearPattern = `^(\d{4})/(\d{4})$`

	// Class name: grade level followed by one letter, e.g. 7A or 10F
	ClassNamePattern = `^\d{1,2}[A-Z]$`

	// Grade marker used inside identifiers, e.g. 07
	GradeMarkerPattern = `^\d{2}$`
)

// CompiledPatterns caches compiled regex patterns for better performance
var CompiledPatterns = struct {
	AcademicYear *regexp.Regexp
	ClassName    *regexp.Regexp
	GradeMarker  *regexp.Regexp
}{
	AcademicYear: regexp.MustCompile(AcademicYearPattern),
	ClassName:    regexp.MustCompile(ClassNamePattern),
	GradeMarker:  regexp.MustCompile(GradeMarkerPattern),
}

// Tags registered by Register
const (
	TagAcademicYear = "academic_year"
	TagClassName    = "class_name"
	TagGradeMarker  = "grade_marker"
)

// IsAcademicYear reports whether s is a pair of consecutive years such as 2025/2026
func IsAcademicYear(s string) bool {
	m := CompiledPatterns.AcademicYear.FindStringSubmatch(s)
	if m == nil {
		return false
	}
	first, _ := strconv.Atoi(m[1])
	second, _ := strconv.Atoi(m[2])
	return second == first+1
}

// IsClassName reports whether s looks like a class name
func IsClassName(s string) bool {
	return CompiledPatterns.ClassName.MatchString(s)
}

// IsGradeMarker reports whether s is a two digit grade marker
func IsGradeMarker(s string) bool {
	return CompiledPatterns.GradeMarker.MatchString(s)
}

// Register adds the admission rules to v
func Register(v *validator.Validate) error {
	rules := map[string]func(string) bool{
		TagAcademicYear: IsAcademicYear,
		TagClassName:    IsClassName,
		TagGradeMarker:  IsGradeMarker,
	}
	for tag, check := range rules {
		check := check
		if err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return check(fl.Field().String())
		}); err != nil {
			return err
		}
	}
	return nil
}

// New returns a validator with the admission rules registered
func New() *validator.Validate {
	v := validator.New()
	if err := Register(v); err != nil {
		panic(err)
	}
	return v
}
