package entity

import (
	"fmt"

	"apin-chat/internal/constant"
)

// ModelType is the generation profile applied to every response request.
type ModelType string

const (
	ModelTypeBalanced ModelType = "Balanced"
	ModelTypeCreative ModelType = "Creative"
	ModelTypePrecise  ModelType = "Precise"
)

// AllModelTypes lists the profiles in display order.
var AllModelTypes = []ModelType{ModelTypeBalanced, ModelTypeCreative, ModelTypePrecise}

func ParseModelType(s string) (ModelType, error) {
	for _, t := range AllModelTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown model type %q", s)
}

func (t ModelType) Description() string {
	switch t {
	case ModelTypeCreative:
		return "More creative and expressive responses"
	case ModelTypePrecise:
		return "Focused on accuracy and facts"
	default:
		return "Balanced for everyday conversations"
	}
}

func (t ModelType) Instructions() string {
	switch t {
	case ModelTypeCreative:
		return constant.CreativeInstructions
	case ModelTypePrecise:
		return constant.PreciseInstructions
	default:
		return constant.BalancedInstructions
	}
}

func (t ModelType) Temperature() float64 {
	switch t {
	case ModelTypeCreative:
		return 1.2
	case ModelTypePrecise:
		return 0.3
	default:
		return 0.7
	}
}
