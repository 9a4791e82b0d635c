package packflow

// Direction is +1 on even packs (pass left) and -1 on odd packs (pass right).
func Direction(pack int) int {
	if pack%2 == 0 {
		return 1
	}
	return -1
}

// NextOffset applies one pass to a rotation offset.
func NextOffset(offset, pack, seats int) int {
	if seats <= 0 {
		return 0
	}
	return mod(offset+Direction(pack), seats)
}

// SourceSeat is the seat whose dealt pack a seat holds at the given offset.
func SourceSeat(seat, offset, seats int) int {
	if seats <= 0 {
		return 0
	}
	return mod(seat+offset, seats)
}

// RotatePacks performs one pass of physical packs: afterwards seat i holds
// what seat i+Direction(pack) held. It agrees with NextOffset and SourceSeat.
func RotatePacks[T any](packs []T, pack int) []T {
	n := len(packs)
	rotated := make([]T, n)
	for i := range packs {
		rotated[i] = packs[mod(i+Direction(pack), n)]
	}
	return rotated
}

func mod(a, n int) int {
	return ((a % n) + n) % n
}
