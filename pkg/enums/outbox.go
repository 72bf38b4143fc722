package enums

import "fmt"

// OutboxEventType names a domain event queued through the transactional outbox.
type OutboxEventType string

const (
	OutboxEventBookingCreated        OutboxEventType = "booking.created"
	OutboxEventOrderCreated          OutboxEventType = "order.created"
	OutboxEventTicketCreated         OutboxEventType = "ticket.created"
	OutboxEventTicketUpdated         OutboxEventType = "ticket.updated"
	OutboxEventPackageUpdated        OutboxEventType = "package.updated"
	OutboxEventInviteCreated         OutboxEventType = "invite.created"
	OutboxEventUserRegistered        OutboxEventType = "user.registered"
	OutboxEventPasswordResetRequest  OutboxEventType = "user.password_reset_requested"
	OutboxEventContactFormSubmitted  OutboxEventType = "contact.submitted"
	OutboxEventTeamMemberActivated   OutboxEventType = "team_member.activated"
)

var validOutboxEventTypes = []OutboxEventType{
	OutboxEventBookingCreated,
	OutboxEventOrderCreated,
	OutboxEventTicketCreated,
	OutboxEventTicketUpdated,
	OutboxEventPackageUpdated,
	OutboxEventInviteCreated,
	OutboxEventUserRegistered,
	OutboxEventPasswordResetRequest,
	OutboxEventContactFormSubmitted,
	OutboxEventTeamMemberActivated,
}

// String implements fmt.Stringer.
func (o OutboxEventType) String() string {
	return string(o)
}

// IsValid reports whether the value matches a known OutboxEventType.
func (o OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == o {
			return true
		}
	}
	return false
}

// OutboxAggregateType names the aggregate an outbox event refers to.
type OutboxAggregateType string

const (
	OutboxAggregateBooking    OutboxAggregateType = "booking"
	OutboxAggregateOrder      OutboxAggregateType = "order"
	OutboxAggregateTicket     OutboxAggregateType = "ticket"
	OutboxAggregatePackage    OutboxAggregateType = "service_package"
	OutboxAggregateTeamMember OutboxAggregateType = "team_member"
	OutboxAggregateUser       OutboxAggregateType = "user"
	OutboxAggregateContact    OutboxAggregateType = "contact"
)

var validOutboxAggregateTypes = []OutboxAggregateType{
	OutboxAggregateBooking,
	OutboxAggregateOrder,
	OutboxAggregateTicket,
	OutboxAggregatePackage,
	OutboxAggregateTeamMember,
	OutboxAggregateUser,
	OutboxAggregateContact,
}

// String implements fmt.Stringer.
func (o OutboxAggregateType) String() string {
	return string(o)
}

// IsValid reports whether the value matches a known OutboxAggregateType.
func (o OutboxAggregateType) IsValid() bool {
	for _, candidate := range validOutboxAggregateTypes {
		if candidate == o {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into an OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid outbox event type %q", value)
}
