package loan

import "time"

// AggregateApproval derives a loan's approval status from the full set of its details.
//
//	all pending (or none)                 -> pending
//	all approved                          -> approved
//	all rejected                          -> rejected
//	some approved, rest rejected/pending  -> partial
//	some rejected, rest pending           -> processing
func AggregateApproval(details []Detail) ApprovalStatus {
	var pending, approved, rejected int
	for _, d := range details {
		switch d.ApprovalStatus {
		case DetailApproved:
			approved++
		case DetailRejected:
			rejected++
		default:
			pending++
		}
	}
	total := len(details)
	switch {
	case total == 0 || pending == total:
		return ApprovalPending
	case approved == total:
		return ApprovalApproved
	case rejected == total:
		return ApprovalRejected
	case approved > 0:
		return ApprovalPartial
	default:
		return ApprovalProcessing
	}
}

// DeriveStatus maps an approval aggregate onto the loan status while the loan is pre-borrow.
// Once borrowed the approval no longer drives the status.
func DeriveStatus(current Status, agg ApprovalStatus) Status {
	if !current.IsPreBorrow() {
		return current
	}
	switch agg {
	case ApprovalApproved, ApprovalPartial:
		return StatusWaiting
	case ApprovalRejected:
		return StatusRejected
	default:
		return StatusPending
	}
}

// Recompute rebuilds ApprovalStatus and the pre-borrow Status from l.Details.
func (l *Loan) Recompute(at time.Time) {
	l.ApprovalStatus = AggregateApproval(l.Details)
	l.SetStatus(DeriveStatus(l.Status, l.ApprovalStatus), at)
}

// ApprovedDetails returns the details that become borrow lines.
func (l *Loan) ApprovedDetails() []Detail {
	out := make([]Detail, 0, len(l.Details))
	for _, d := range l.Details {
		if d.ApprovalStatus == DetailApproved {
			out = append(out, d)
		}
	}
	return out
}

func (l *Loan) HasPendingDetails() bool {
	for _, d := range l.Details {
		if d.ApprovalStatus == DetailPending {
			return true
		}
	}
	return false
}

// DetailByDetailID returns a pointer into l.Details so mutations stay visible to Recompute.
func (l *Loan) DetailByDetailID(detailID string) *Detail {
	for i := range l.Details {
		if l.Details[i].DetailID == detailID {
			return &l.Details[i]
		}
	}
	return nil
}
