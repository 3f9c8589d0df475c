package chess

// IsLegalMove reports whether p may move to sq: the move must be pseudo-legal
// and must not leave p's own king attacked. The resulting position is
// evaluated on a throwaway copy of the board, so captures, blocks and king
// moves are all judged against the position after the move.
// The active player is not consulted.
func (b *Board) IsLegalMove(p Piece, sq Square) bool {
	if !b.IsPseudoLegalMove(p, sq) {
		return false
	}
	if q, ok := b.PieceAt(p.Square); !ok || q != p {
		return false
	}
	sim := b.Clone()
	sim.MovePieceTo(p, sq)
	return !sim.kingAttacked(p.Owner)
}

// HasAnyLegalMove reports whether p belongs to the active player and has at
// least one legal target.
func (b *Board) HasAnyLegalMove(p Piece) bool {
	if p.Owner != b.active {
		return false
	}
	for range p.LegalTargets(b) {
		return true
	}
	return false
}

// IsSelectable reports whether p may be picked up this turn.
func (b *Board) IsSelectable(p Piece) bool {
	return b.HasAnyLegalMove(p)
}

// InCheck returns the owner of the first king, in board order, that some
// piece can capture with a pseudo-legal move. Opponent replies are not
// checked for legality themselves.
func (b *Board) InCheck() Player {
	for _, king := range b.pieces {
		if king.Kind == King && b.attacked(king.Square) {
			return king.Owner
		}
	}
	return NoPlayer
}

// Checkmate returns the player in check if none of that player's pieces has a
// legal move, and NoPlayer otherwise.
func (b *Board) Checkmate() Player {
	checked := b.InCheck()
	if checked == NoPlayer {
		return NoPlayer
	}
	for _, p := range b.pieces {
		if p.Owner == checked && b.HasAnyLegalMove(p) {
			return NoPlayer
		}
	}
	return checked
}

// Stalemate reports whether the active player is not in check yet cannot move.
func (b *Board) Stalemate() bool {
	if b.kingAttacked(b.active) {
		return false
	}
	for _, p := range b.pieces {
		if p.Owner == b.active && b.HasAnyLegalMove(p) {
			return false
		}
	}
	return true
}

func (b *Board) kingAttacked(owner Player) bool {
	for _, king := range b.pieces {
		if king.Kind == King && king.Owner == owner && b.attacked(king.Square) {
			return true
		}
	}
	return false
}

// attacked reports whether any piece has a pseudo-legal move onto sq. Pieces
// of the occupant's own side are excluded by the occupancy rule.
func (b *Board) attacked(sq Square) bool {
	for _, p := range b.pieces {
		if b.IsPseudoLegalMove(p, sq) {
			return true
		}
	}
	return false
}
