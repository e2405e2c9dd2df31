package models

// XPPerLevel is the amount of XP between consecutive levels
const XPPerLevel = 500

// ProgressState is the player's accumulated XP and the level derived from it
type ProgressState struct {
	XP    int `json:"xp"`
	Level int `json:"level"`
}

// LevelForXP derives the level from an XP total. Level 1 starts at 0 XP.
func LevelForXP(xp int) int {
	if xp < 0 {
		xp = 0
	}
	return xp/XPPerLevel + 1
}

// NewProgressState builds a consistent state for the given XP
func NewProgressState(xp int) ProgressState {
	return ProgressState{XP: xp, Level: LevelForXP(xp)}
}

// XPIntoLevel is the progress within the current level
func (p ProgressState) XPIntoLevel() int {
	return p.XP % XPPerLevel
}

// XPToNextLevel is how much XP is missing to reach the next level
func (p ProgressState) XPToNextLevel() int {
	return XPPerLevel - p.XP%XPPerLevel
}

// HUD is the header display of the player's progress
type HUD struct {
	Level         int `json:"level"`
	XP            int `json:"xp"`
	XPIntoLevel   int `json:"xp_into_level"`
	XPToNextLevel int `json:"xp_to_next_level"`
}

// HUD builds the header display for the state
func (p ProgressState) HUD() HUD {
	return HUD{
		Level:         p.Level,
		XP:            p.XP,
		XPIntoLevel:   p.XPIntoLevel(),
		XPToNextLevel: p.XPToNextLevel(),
	}
}
