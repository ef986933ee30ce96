package core

// Attribute distributes an expense's amount across member buckets for
// reporting. An expense with no assigned members counts in full under the
// synthetic "Household" bucket. Otherwise the amount is split evenly across
// the assigned ids; shares of ids that no longer resolve to a member land
// under "Other" instead of being dropped.
//
// Shares are expressed in fractional cents. No rounding correction is
// applied; callers that need the total back sum the shares.
func Attribute(e Expense, members []Member) map[string]float64 {
	shares := make(map[string]float64)
	if len(e.MemberIDs) == 0 {
		shares[BucketHousehold] = float64(e.Amount.Cents)
		return shares
	}

	byID := make(map[string]string, len(members))
	for _, m := range members {
		byID[m.ID] = m.Name
	}

	split := float64(e.Amount.Cents) / float64(len(e.MemberIDs))
	for _, id := range e.MemberIDs {
		name, ok := byID[id]
		if !ok {
			shares[BucketOther] += split
			continue
		}
		shares[name] += split
	}
	return shares
}
