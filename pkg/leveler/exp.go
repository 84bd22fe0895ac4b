// Package leveler implements the experience, rank and badge rules of the
// leveling system, plus the image cards rendered for profiles and ranks.
package leveler

import (
	"math"

	"github.com/PancyStudios/CogsBotGo/pkg/models"
)

// ChatCooldown is the minimum time in seconds between two messages that grant XP
const ChatCooldown = 120.0

// RepCooldown is the time in seconds a user waits between two reputation points
const RepCooldown = 43200.0

// RequiredExp returns the experience needed to go from level to level+1
func RequiredExp(level int) int {
	if level < 0 {
		return 0
	}
	return 139*level + 65
}

// LevelExp returns the total experience needed to reach level from zero
func LevelExp(level int) int {
	if level <= 0 {
		return 0
	}
	return 65*level + 139*level*(level-1)/2
}

// FindLevel returns the level reached with total experience
func FindLevel(total int) int {
	if total <= 0 {
		return 0
	}
	return int((9 + math.Sqrt(81+1112*float64(total))) / 278)
}

// ServerExp returns the experience accumulated in a guild
func ServerExp(stats models.ServerStats) int {
	exp := 0
	for i := 0; i < stats.Level; i++ {
		exp += RequiredExp(i)
	}
	return exp + stats.CurrentExp
}

// Progress returns the completed fraction of the current level, between 0 and 1
func Progress(stats models.ServerStats) float64 {
	req := RequiredExp(stats.Level)
	if req <= 0 {
		return 0
	}
	p := float64(stats.CurrentExp) / float64(req)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
