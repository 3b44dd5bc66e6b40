package models

// Metadata is a key/value row holding orchestration context (current phase,
// day, round, battle identifier). Re-initialized on every battle reset.
type Metadata struct {
	Key   string `db:"key" json:"key"`
	Value string `db:"value" json:"value"`
}

// Well-known metadata keys.
const (
	MetaKeyPhase    = "current_phase"
	MetaKeyDay      = "current_day"
	MetaKeyRound    = "current_round"
	MetaKeyBattleID = "battle_id"
)
