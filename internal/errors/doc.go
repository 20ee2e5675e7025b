// Package errors provides the coded error type shared by every layer of
// active-defence.
//
// Two codes are specific to defence rolls:
//
//   - INVALID_MODIFIER: the situational modifier text failed validation. This
//     is recoverable; the roll proceeds without a modifier.
//   - ROLL_ENGINE: the dice engine returned no usable d20 group. The
//     resolution is aborted and the error is surfaced to the caller.
//
// Creating and wrapping:
//
//	err := errors.InvalidArgument("actor is required")
//	if err := repo.Update(ctx, session); err != nil {
//	    return errors.Wrap(err, "failed to update dice session")
//	}
//
// Dependency configs validate with the builder:
//
//	vb := errors.NewValidationBuilder()
//	if cfg.Engine == nil {
//	    vb.RequiredField("Engine")
//	}
//	return vb.Build()
//
// Handlers convert with ToGRPCError.
package errors
