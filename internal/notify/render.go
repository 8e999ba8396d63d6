package notify

import (
	"fmt"

	"github.com/erazemk/najdeno/internal/model"
)

// render returns the inbox title and message for an event.
func render(eventType string, p model.NotificationPayload) (title, message string) {
	name := p.ItemName
	if name == "" {
		name = model.UnavailableItemName
	}

	switch eventType {
	case model.EventNewClaim:
		return "New Claim Submitted", fmt.Sprintf("Someone has claimed your item: %s", name)

	case model.EventClaimApproved:
		if p.Resolution != "" {
			return "Claim Approved by Admin", fmt.Sprintf("An administrator approved your claim for %q. Please contact the finder to arrange pickup.", name)
		}
		return "Claim Approved", fmt.Sprintf("Your claim for %q has been approved. Please contact the finder to arrange pickup.", name)

	case model.EventClaimRejected:
		msg := fmt.Sprintf("Your claim for %q has been rejected.", name)
		if p.Notes != "" {
			msg += " Reason: " + p.Notes
		}
		if p.Resolution != "" {
			return "Claim Rejected by Admin", msg
		}
		return "Claim Rejected", msg

	case model.EventClaimFlagged:
		return "Claim Under Review", fmt.Sprintf("Your claim for %q has been sent for review by a moderator.", name)

	case model.EventClaimMoreInfo:
		if p.Resolution != "" {
			return "More Information Needed", fmt.Sprintf("We need more information about your claim for %q. Please provide: %s", name, p.Notes)
		}
		return "Additional Information Requested",
			fmt.Sprintf("The finder of %s has requested more information about your claim: %q", name, p.Notes)

	case model.EventMoreInfoResponse:
		return "Additional Information Provided", fmt.Sprintf("The claimant has provided additional information for the item: %s", name)

	case model.EventVerificationUpdate:
		return "Verification Update", fmt.Sprintf("The verification of a claim for %q has been updated.", name)

	case model.EventDisputeResolution:
		switch p.Resolution {
		case "approved":
			return "Claim Approved by Admin", fmt.Sprintf("An administrator has approved a claim for your item: %s.", name)
		case "rejected":
			return "Claim Rejected by Admin", fmt.Sprintf("An administrator has rejected a claim for your item: %s.", name)
		default:
			return "Claim Resolution Update", fmt.Sprintf("There has been an update to a claim for your item: %s.", name)
		}

	default:
		return "Claim Status Updated", fmt.Sprintf("There has been an update regarding %q.", name)
	}
}
