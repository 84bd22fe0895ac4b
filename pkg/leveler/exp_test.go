package leveler

import (
	"testing"

	"github.com/PancyStudios/CogsBotGo/pkg/models"
)

func TestRequiredExp(t *testing.T) {
	tests := []struct {
		level int
		want  int
	}{
		{-1, 0},
		{0, 65},
		{1, 204},
		{10, 1455},
	}
	for _, tt := range tests {
		if got := RequiredExp(tt.level); got != tt.want {
			t.Errorf("RequiredExp(%d) = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestLevelExpMatchesRequiredSum(t *testing.T) {
	sum := 0
	for level := 0; level < 100; level++ {
		if got := LevelExp(level); got != sum {
			t.Fatalf("LevelExp(%d) = %v, want %v", level, got, sum)
		}
		sum += RequiredExp(level)
	}
}

func TestFindLevelInvertsLevelExp(t *testing.T) {
	for level := 0; level < 200; level++ {
		if got := FindLevel(LevelExp(level)); got != level {
			t.Errorf("FindLevel(LevelExp(%d)) = %v, want %v", level, got, level)
		}
		if got := FindLevel(LevelExp(level+1) - 1); got != level {
			t.Errorf("FindLevel(LevelExp(%d)-1) = %v, want %v", level+1, got, level)
		}
	}
}

func TestServerExp(t *testing.T) {
	stats := models.ServerStats{Level: 2, CurrentExp: 10}
	if got := ServerExp(stats); got != 279 {
		t.Errorf("ServerExp = %v, want %v", got, 279)
	}
	if got := ServerExp(models.ServerStats{}); got != 0 {
		t.Errorf("ServerExp(empty) = %v, want 0", got)
	}
}

func TestProgress(t *testing.T) {
	tests := []struct {
		stats models.ServerStats
		want  float64
	}{
		{models.ServerStats{Level: 0, CurrentExp: 0}, 0},
		{models.ServerStats{Level: 0, CurrentExp: 65}, 1},
		{models.ServerStats{Level: 0, CurrentExp: 130}, 1},
		{models.ServerStats{Level: 1, CurrentExp: 102}, 0.5},
	}
	for _, tt := range tests {
		if got := Progress(tt.stats); got != tt.want {
			t.Errorf("Progress(%+v) = %v, want %v", tt.stats, got, tt.want)
		}
	}
}
