package dataset

import "abalone/domain/core"

// Abalone shell measurement fields.
const (
	Length   core.VariableKey = "length"
	Diameter core.VariableKey = "diameter"
	Height   core.VariableKey = "height"
	Whole    core.VariableKey = "whole"
	Shucked  core.VariableKey = "shucked"
	Viscera  core.VariableKey = "viscera"
	Shell    core.VariableKey = "shell"
	Infant   core.VariableKey = "infant"

	// Rings is present in the source table but never analysed.
	Rings core.VariableKey = "rings"
	// Sex is the categorical M/F/I column some copies carry instead of Infant.
	Sex core.VariableKey = "sex"
)

// Measurements lists the continuous shell measurements in table order.
func Measurements() []core.VariableKey {
	return []core.VariableKey{Length, Diameter, Height, Whole, Shucked, Viscera, Shell}
}

// AbaloneSchema lists every field an abalone dataset must carry.
func AbaloneSchema() []core.VariableKey {
	return append(Measurements(), Infant)
}
