package damage

import "github.com/richxcame/claimguard/pkg/models"

const baseInstructions = `
You are an expert insurance claims assessor in Nigeria.
Analyze this image and provide a detailed damage assessment.

CRITICAL: Respond ONLY with valid JSON. No markdown, no explanation outside JSON.
`

const motorInstructions = `
{
  "damage_type": "Describe the primary damage (e.g., 'Front bumper collision', 'Side panel dent')",
  "severity": "minor | moderate | severe",
  "estimated_cost_ngn": <number> (Use current Lagos market rates for parts + labor),
  "damaged_items": ["List each damaged part", "e.g., 'Headlight assembly'", "Hood panel"],
  "confidence": <0.0 to 1.0> (How certain are you about this assessment?),
  "reasoning": "Brief explanation of your assessment (2-3 sentences)"
}

PRICING GUIDE (Lagos, 2025):
- Minor scratches/dents: ₦50,000 - ₦150,000
- Moderate damage (panels, lights): ₦150,000 - ₦500,000
- Severe damage (structural, multiple parts): ₦500,000 - ₦2,000,000
`

const propertyInstructions = `
{
  "damage_type": "Describe the damage (e.g., 'Water damage to ceiling', 'Fire damage to kitchen')",
  "severity": "minor | moderate | severe",
  "estimated_cost_ngn": <number> (Nigerian market rates),
  "damaged_items": ["List damaged property", "e.g., 'Electronics'", "Furniture"],
  "confidence": <0.0 to 1.0>,
  "reasoning": "Brief explanation"
}

PRICING GUIDE:
- Minor (cosmetic): ₦100,000 - ₦300,000
- Moderate (repairs needed): ₦300,000 - ₦1,000,000
- Severe (replacement/rebuild): ₦1,000,000+
`

const genericInstructions = `
{
  "damage_type": "Description of damage/injury",
  "severity": "minor | moderate | severe",
  "estimated_cost_ngn": <number>,
  "damaged_items": ["Affected areas/items"],
  "confidence": <0.0 to 1.0>,
  "reasoning": "Brief explanation"
}
`

// Instruction returns the assessor instruction text for a claim type.
// Health and unrecognised types share the generic shape
func Instruction(claimType models.ClaimType) string {
	switch claimType {
	case models.ClaimTypeMotor:
		return baseInstructions + motorInstructions
	case models.ClaimTypeProperty:
		return baseInstructions + propertyInstructions
	default:
		return baseInstructions + genericInstructions
	}
}
