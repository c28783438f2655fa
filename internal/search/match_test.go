package search

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMatchDateAcrossRepresentations(t *testing.T) {
	day := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)

	require.True(t, MatchDate(day, "03-05"))
	require.True(t, MatchDate("2024-03-05", "03-05"))
	require.True(t, MatchDate("2024/03/05", "03-05"))
	require.True(t, MatchDate(day, "2024-03-05"))
	require.True(t, MatchDate(day, "2024/03/05"))

	require.False(t, MatchDate(day, "03-06"))
	require.False(t, MatchDate("2024-03-05", "2023"))
}

func TestMatchDateUnparseableFallsBack(t *testing.T) {
	require.True(t, MatchDate("pending", "pend"))
	require.False(t, MatchDate("pending", "2024"))
}

func TestMatchTextCaseInsensitive(t *testing.T) {
	require.True(t, MatchText("Hanjin Coatings", "hanjin"))
	require.True(t, MatchText("OI-2024-001", "2024"))
	require.False(t, MatchText("Hanjin Coatings", "daelim"))
	require.True(t, MatchText("anything", "  "))
}

func TestFilterByCriteria(t *testing.T) {
	type row struct {
		Company string
		InDate  time.Time
	}
	rows := []row{
		{Company: "Hanjin", InDate: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)},
		{Company: "Daelim", InDate: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)},
	}

	byCompany := Filter(rows, CriteriaCompany, "han", func(r row) any { return r.Company })
	require.Len(t, byCompany, 1)
	require.Equal(t, "Hanjin", byCompany[0].Company)

	byDate := Filter(rows, CriteriaDate, "03-05", func(r row) any { return r.InDate })
	require.Len(t, byDate, 1)
	require.Equal(t, "Hanjin", byDate[0].Company)

	all := Filter(rows, CriteriaCompany, "", func(r row) any { return r.Company })
	require.Len(t, all, 2)
}
