package combat

// FirstTurn returns the side that acts first: the faster combatant, with ties
// going to the player.
//
// Precondition: player and opponent must not be nil.
func FirstTurn(player, opponent *Combatant) Side {
	if opponent.Speed > player.Speed {
		return SideOpponent
	}
	return SidePlayer
}
