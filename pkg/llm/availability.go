package llm

import "fmt"

type UnavailableReason string

const (
	ReasonDeviceIneligible UnavailableReason = "device_ineligible"
	ReasonFeatureDisabled  UnavailableReason = "feature_disabled"
	ReasonModelDownloading UnavailableReason = "model_downloading"
	ReasonOther            UnavailableReason = "other"
)

// Availability is either Available or Unavailable with a Reason.
// Detail is only meaningful for ReasonOther.
type Availability struct {
	Available bool              `json:"available"`
	Reason    UnavailableReason `json:"reason,omitempty"`
	Detail    string            `json:"detail,omitempty"`
}

func Available() Availability {
	return Availability{Available: true}
}

func Unavailable(reason UnavailableReason) Availability {
	return Availability{Reason: reason}
}

func UnavailableOther(detail string) Availability {
	return Availability{Reason: ReasonOther, Detail: detail}
}

func (a Availability) String() string {
	if a.Available {
		return "available"
	}
	if a.Detail != "" {
		return fmt.Sprintf("unavailable(%s: %s)", a.Reason, a.Detail)
	}
	return fmt.Sprintf("unavailable(%s)", a.Reason)
}

// StatusIndicator is the short category shown next to the model status.
type StatusIndicator string

const (
	IndicatorReady       StatusIndicator = "ready"
	IndicatorDownloading StatusIndicator = "downloading"
	IndicatorDisabled    StatusIndicator = "disabled"
	IndicatorError       StatusIndicator = "error"
)

const genericUnavailable = "The language model is unavailable."

// Describe returns the user-facing sentence for the availability state.
func (a Availability) Describe() string {
	if a.Available {
		return "The language model is ready."
	}
	switch a.Reason {
	case ReasonDeviceIneligible:
		return "This device isn't eligible to run the local language model."
	case ReasonFeatureDisabled:
		return "The local language model is turned off. Enable it in settings to start chatting."
	case ReasonModelDownloading:
		return "The language model is still downloading. Please try again shortly."
	case ReasonOther:
		if a.Detail == "" {
			return genericUnavailable
		}
		return fmt.Sprintf("The language model is unavailable: %s", a.Detail)
	default:
		return genericUnavailable
	}
}

func (a Availability) Indicator() StatusIndicator {
	if a.Available {
		return IndicatorReady
	}
	switch a.Reason {
	case ReasonModelDownloading:
		return IndicatorDownloading
	case ReasonFeatureDisabled:
		return IndicatorDisabled
	case ReasonDeviceIneligible, ReasonOther:
		return IndicatorError
	default:
		return IndicatorError
	}
}
