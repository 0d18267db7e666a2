package service

import "context"

// optimisticCommand is the shared apply → attempt → confirm-or-rollback
// primitive behind enroll and unenroll. The local mutation is applied before
// the remote call so the read model stays responsive; rollback must be the
// exact inverse of apply so a remote failure restores the pre-call state.
type optimisticCommand struct {
	apply    func()
	attempt  func(ctx context.Context) error
	confirm  func()
	rollback func()
}

// run executes the command. Ordering guarantees: apply happens-before
// attempt; attempt's resolution happens-before confirm or rollback.
func (c optimisticCommand) run(ctx context.Context) error {
	if c.apply != nil {
		c.apply()
	}
	if err := c.attempt(ctx); err != nil {
		if c.rollback != nil {
			c.rollback()
		}
		return err
	}
	if c.confirm != nil {
		c.confirm()
	}
	return nil
}
