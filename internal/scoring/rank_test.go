package scoring

import (
	"testing"

	"bowl_picks/internal/models"

	"github.com/stretchr/testify/assert"
)

func entry(id int64, wins, losses int) Entry {
	return Entry{User: models.Profile{ID: id}, Record: Record{Wins: wins, Losses: losses}}
}

func ids(standings []Standing) []int64 {
	res := make([]int64, len(standings))
	for i, s := range standings {
		res[i] = s.User.ID
	}
	return res
}

func TestRank(t *testing.T) {
	t.Run("wins desc then losses asc", func(t *testing.T) {
		a, b, c := entry(1, 3, 1), entry(2, 3, 0), entry(3, 2, 0)

		res := Rank([]Entry{a, b, c})

		assert.Equal(t, []int64{2, 1, 3}, ids(res))
		assert.Equal(t, []int{1, 2, 3}, []int{res[0].Rank, res[1].Rank, res[2].Rank})
	})

	t.Run("ties keep input order", func(t *testing.T) {
		in := []Entry{entry(5, 1, 1), entry(3, 2, 0), entry(9, 1, 1), entry(1, 1, 1)}

		assert.Equal(t, []int64{3, 5, 9, 1}, ids(Rank(in)))
	})

	t.Run("input is not reordered", func(t *testing.T) {
		in := []Entry{entry(1, 0, 3), entry(2, 3, 0)}

		Rank(in)

		assert.Equal(t, int64(1), in[0].User.ID)
	})

	t.Run("empty", func(t *testing.T) {
		assert.Empty(t, Rank(nil))
	})
}

func TestStandings(t *testing.T) {
	games := []models.Game{
		{ID: 1, Status: models.StatusFinal, AwayScore: score(21), HomeScore: score(14)},
		{ID: 2, Status: models.StatusFinal, AwayScore: score(7), HomeScore: score(24)},
		{ID: 3, Status: models.StatusScheduled},
	}
	users := []models.User{{ID: 10, Name: "Ann"}, {ID: 20, Name: "Bob"}, {ID: 30, Name: "Cid"}}
	picks := []models.Pick{
		{ID: 1, UserID: 10, GameID: 1, Side: models.SideHome},
		{ID: 2, UserID: 10, GameID: 2, Side: models.SideHome},
		{ID: 3, UserID: 20, GameID: 1, Side: models.SideAway},
		{ID: 4, UserID: 20, GameID: 2, Side: models.SideHome},
		{ID: 5, UserID: 20, GameID: 3, Side: models.SideHome},
		{ID: 6, UserID: 99, GameID: 1, Side: models.SideAway},
	}

	res := Standings(users, games, picks)

	assert.Equal(t, []int64{20, 10, 30}, ids(res))
	assert.Equal(t, Record{Wins: 2}, res[0].Record)
	assert.Equal(t, 3, res[0].PicksMade)
	assert.Equal(t, Record{Wins: 1, Losses: 1}, res[1].Record)
	assert.Equal(t, Record{}, res[2].Record)
	assert.Equal(t, 0, res[2].PicksMade)
}
