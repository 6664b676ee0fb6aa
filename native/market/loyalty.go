package market

// Points granted per activity.
const (
	RewardTier1 uint32 = 1
	RewardTier2 uint32 = 10
	RewardTier3 uint32 = 50
)

// Activity is a user action that earns loyalty points.
type Activity uint8

const (
	ActivityBid Activity = iota + 1
	ActivityMint
	ActivityList
	ActivityWin
)

func (a Activity) points() uint32 {
	switch a {
	case ActivityBid, ActivityMint:
		return RewardTier1
	case ActivityList:
		return RewardTier2
	case ActivityWin:
		return RewardTier3
	default:
		return 0
	}
}

// Record credits the points and counters for one activity. firstBid marks the
// user's first bid on a listing, which also counts as participating in that
// auction. Either every counter is updated or none is.
func (u *UserAccount) Record(activity Activity, firstBid bool) error {
	next := *u
	var err error
	if next.Points, err = addU32(next.Points, activity.points()); err != nil {
		return err
	}
	switch activity {
	case ActivityBid:
		if next.TotalBidsPlaced, err = addU32(next.TotalBidsPlaced, 1); err != nil {
			return err
		}
		if firstBid {
			if next.TotalAuctionsParticipated, err = addU32(next.TotalAuctionsParticipated, 1); err != nil {
				return err
			}
		}
	case ActivityList:
		if next.TotalAuctionsCreated, err = addU32(next.TotalAuctionsCreated, 1); err != nil {
			return err
		}
	case ActivityWin:
		if next.TotalAuctionsWon, err = addU32(next.TotalAuctionsWon, 1); err != nil {
			return err
		}
	}
	*u = next
	return nil
}
