package distribution

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yigit/spmb/internal/app/models"
)

func TestParseYearPair(t *testing.T) {
	start, end, err := ParseYearPair("2025/2026")
	require.NoError(t, err)
	require.Equal(t, "25", start)
	require.Equal(t, "26", end)

	start, end, err = ParseYearPair("2099/2100")
	require.NoError(t, err)
	require.Equal(t, "99", start)
	require.Equal(t, "00", end)

	for _, bad := range []string{"", "2025", "2025-2026", "25/26", "2025/2027", "2026/2025", " 2025/2026"} {
		_, _, err := ParseYearPair(bad)
		require.ErrorIs(t, err, ErrInvalidYearPair, bad)
	}
}

func TestGenerateIdentifiers(t *testing.T) {
	t.Run("numbers classes in name order with a global ordinal", func(t *testing.T) {
		d := Distribution{
			"7B": {newCandidate(30, models.GenderFemale, "")},
			"7A": {newCandidate(10, models.GenderMale, ""), newCandidate(20, models.GenderFemale, "")},
		}

		placements, err := GenerateIdentifiers(d, "2025/2026", "07")

		require.NoError(t, err)
		require.Equal(t, []Placement{
			{CandidateID: 10, ClassName: "7A", NIS: "25.26.07.001"},
			{CandidateID: 20, ClassName: "7A", NIS: "25.26.07.002"},
			{CandidateID: 30, ClassName: "7B", NIS: "25.26.07.003"},
		}, placements)
	})

	t.Run("keeps list order instead of sorting by name", func(t *testing.T) {
		a := newCandidate(1, models.GenderMale, "")
		a.FullName = "Zaki"
		b := newCandidate(2, models.GenderMale, "")
		b.FullName = "Adi"
		d := Distribution{"7A": {a, b}}

		placements, err := GenerateIdentifiers(d, "2025/2026", "07")

		require.NoError(t, err)
		require.Equal(t, int64(1), placements[0].CandidateID)
		require.Equal(t, "25.26.07.001", placements[0].NIS)
	})

	t.Run("is deterministic for an unchanged distribution", func(t *testing.T) {
		d, err := Distribute(roster(40, 37), 6, "7")
		require.NoError(t, err)

		first, err := GenerateIdentifiers(d, "2025/2026", "07")
		require.NoError(t, err)
		second, err := GenerateIdentifiers(d, "2025/2026", "07")
		require.NoError(t, err)

		require.Equal(t, first, second)
	})

	t.Run("produces ordinals 1..K without reuse", func(t *testing.T) {
		d, err := Distribute(roster(500, 499), 8, "7")
		require.NoError(t, err)

		placements, err := GenerateIdentifiers(d, "2025/2026", "07")

		require.NoError(t, err)
		require.Len(t, placements, 999)
		seen := map[string]bool{}
		for i, p := range placements {
			require.Equal(t, FormatIdentifier("25", "26", "07", i+1), p.NIS)
			require.False(t, seen[p.NIS])
			seen[p.NIS] = true
		}
		require.Equal(t, "25.26.07.999", placements[998].NIS)
	})

	t.Run("fails instead of wrapping past 999", func(t *testing.T) {
		d, err := Distribute(roster(500, 500), 8, "7")
		require.NoError(t, err)

		placements, err := GenerateIdentifiers(d, "2025/2026", "07")

		require.ErrorIs(t, err, ErrIdentifierSpaceExhausted)
		require.Nil(t, placements)
	})

	t.Run("rejects bad year pair and grade marker", func(t *testing.T) {
		d := Distribution{"7A": {newCandidate(1, models.GenderMale, "")}}

		_, err := GenerateIdentifiers(d, "2025/26", "07")
		require.ErrorIs(t, err, ErrInvalidYearPair)

		_, err = GenerateIdentifiers(d, "2025/2026", "7")
		require.ErrorIs(t, err, ErrInvalidGradeMarker)
	})

	t.Run("empty distribution yields no placements", func(t *testing.T) {
		placements, err := GenerateIdentifiers(Distribution{"7A": {}}, "2025/2026", "07")

		require.NoError(t, err)
		require.Empty(t, placements)
	})
}
