package model

// EntityType classifies a combat participant by name.
type EntityType string

const (
	EntityPlayer     EntityType = "Player"
	EntityObjective  EntityType = "Objective"
	EntityJungleCamp EntityType = "Jungle Camp"
	EntityMinion     EntityType = "Minion"
	EntityOther      EntityType = "Other"
)

// Static SMITE 2 entity name sets used by ClassifyEntity.
var (
	Objectives = nameSet(
		"Order Titan", "Chaos Titan",
		"Order Tower", "Chaos Tower",
		"Order Phoenix", "Chaos Phoenix",
		"Gold Fury", "Pyromancer", "Minotaur",
	)

	JungleCamps = nameSet(
		"Harpy", "Elder Harpy", "Roaming Harpy",
		"Chimera", "Alpha Chimera",
		"Manticore", "Alpha Manticore",
		"Centaur", "Alpha Centaur",
		"Scorpion", "Alpha Scorpion",
		"Satyr", "Elder Satyr",
		"Cyclops Warrior", "Rogue Cyclops",
		"Queen Naga", "Naga Soldier",
	)

	Minions = nameSet(
		"Archer", "Champion Archer", "Fire Archer",
		"Brute", "Fire Brute",
		"Swordsman", "Fire Swordsman",
	)
)

func nameSet(names ...string) map[string]struct{} {
	s := make(map[string]struct{}, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

// ClassifyEntity maps a participant name to its entity type. The player
// registry takes precedence over the static sets, so a player named after an
// objective still classifies as Player.
func ClassifyEntity(name string, players map[string]*Player) EntityType {
	if _, ok := players[name]; ok {
		return EntityPlayer
	}
	if _, ok := Objectives[name]; ok {
		return EntityObjective
	}
	if _, ok := JungleCamps[name]; ok {
		return EntityJungleCamp
	}
	if _, ok := Minions[name]; ok {
		return EntityMinion
	}
	return EntityOther
}
