package distribution

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yigit/spmb/internal/app/models"
)

func TestPartition(t *testing.T) {
	t.Run("splits by gender and orders by origin school", func(t *testing.T) {
		input := []models.Candidate{
			newCandidate(1, models.GenderFemale, "SDN 3"),
			newCandidate(2, models.GenderMale, "SDN 2"),
			newCandidate(3, models.GenderMale, ""),
			newCandidate(4, models.GenderFemale, "MI Al-Huda"),
			newCandidate(5, models.GenderMale, "SDN 1"),
		}

		male, female := Partition(input)

		require.Equal(t, []int64{3, 5, 2}, ids(male))
		require.Equal(t, []int64{4, 1}, ids(female))
	})

	t.Run("keeps input order for equal schools", func(t *testing.T) {
		input := []models.Candidate{
			newCandidate(10, models.GenderMale, "SDN 1"),
			newCandidate(11, models.GenderMale, "SDN 1"),
			newCandidate(12, models.GenderMale, "SDN 0"),
			newCandidate(13, models.GenderMale, "SDN 1"),
		}

		male, female := Partition(input)

		require.Equal(t, []int64{12, 10, 11, 13}, ids(male))
		require.Empty(t, female)
	})

	t.Run("does not reorder the input", func(t *testing.T) {
		input := []models.Candidate{
			newCandidate(1, models.GenderMale, "Z"),
			newCandidate(2, models.GenderMale, "A"),
		}

		Partition(input)

		require.Equal(t, []int64{1, 2}, ids(input))
	})

	t.Run("empty input gives two empty groups", func(t *testing.T) {
		male, female := Partition(nil)

		require.Empty(t, male)
		require.Empty(t, female)
	})
}
