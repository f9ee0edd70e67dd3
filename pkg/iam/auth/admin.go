package auth

import (
	"context"

	"github.com/growindia/jobs/pkg/kernel"
	"github.com/growindia/jobs/pkg/logx"
	"github.com/growindia/jobs/pkg/tablex"
)

const adminsTable = "admins"

// AdminChecker answers whether a user is listed in the admins table
type AdminChecker struct {
	store tablex.Client
}

func NewAdminChecker(store tablex.Client) *AdminChecker {
	return &AdminChecker{store: store}
}

// IsAdmin never fails: any store error is logged and reads as false
func (a *AdminChecker) IsAdmin(ctx context.Context, userID kernel.UserID) bool {
	if userID.IsEmpty() {
		return false
	}

	res, err := a.store.Select(ctx, tablex.Query{
		Table:   adminsTable,
		Columns: []string{"user_id"},
		Where:   []tablex.Condition{tablex.Eq("user_id", userID.String())},
		Limit:   1,
	})
	if err != nil {
		logx.Warnf("admin check for %s failed: %v", userID, err)
		return false
	}
	return len(res.Rows) > 0
}

// IsAdminSession treats admin-role sessions as admins without a lookup
func (a *AdminChecker) IsAdminSession(ctx context.Context, s *Session) bool {
	if s == nil {
		return false
	}
	if s.HasAnyScope(ScopeAll) {
		return true
	}
	return a.IsAdmin(ctx, s.UserID)
}
