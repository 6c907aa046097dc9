package classification

// Label - The outcome of one classification axis. Spam detection only produces Safe or Spam, while
// content detection produces Safe or any of the content labels.
type Label string

// Safe - Nothing was detected.
const Safe Label = "Safe"

// Spam - The text contains spam phrases, fake claims, or too many links or hashtags.
const Spam Label = "Spam"

// Offensive - Bad language that is self-directed or not directed at anyone.
const Offensive Label = "Offensive"

// Hate - Bad language aimed at someone else, or political violence.
const Hate Label = "Hate"

// Sex - Sexual content.
const Sex Label = "Sex"

// Harass - Sexual content aimed at someone else.
const Harass Label = "Harass"

// SelfHarm - Violent language aimed at the author.
const SelfHarm Label = "SelfHarm"

// Threats - Violent language aimed at someone else.
const Threats Label = "Threats"

// Violence - Violent language that is not aimed at anyone in particular.
const Violence Label = "Violence"

// ContentLabels - Every label the content axis can produce, excluding Safe.
var ContentLabels = []Label{Offensive, Hate, Sex, Harass, SelfHarm, Threats, Violence}

func (l Label) String() string {
	return string(l)
}

func (l Label) IsSafe() bool {
	return l == Safe
}
