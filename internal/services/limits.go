package services

// Limits bounds user-supplied text and chat page sizes. Title and description
// limits apply to both listings and tasks.
type Limits struct {
	TitleMax         int
	DescriptionMax   int
	BioMax           int
	MessageMax       int
	ChatDefaultLimit int
	ChatMaxLimit     int
}

// DefaultLimits mirrors the bounds the web client enforces
func DefaultLimits() Limits {
	return Limits{
		TitleMax:         100,
		DescriptionMax:   500,
		BioMax:           200,
		MessageMax:       2000,
		ChatDefaultLimit: 50,
		ChatMaxLimit:     200,
	}
}

func (l Limits) withDefaults() Limits {
	d := DefaultLimits()
	if l.TitleMax <= 0 {
		l.TitleMax = d.TitleMax
	}
	if l.DescriptionMax <= 0 {
		l.DescriptionMax = d.DescriptionMax
	}
	if l.BioMax <= 0 {
		l.BioMax = d.BioMax
	}
	if l.MessageMax <= 0 {
		l.MessageMax = d.MessageMax
	}
	if l.ChatDefaultLimit <= 0 {
		l.ChatDefaultLimit = d.ChatDefaultLimit
	}
	if l.ChatMaxLimit < l.ChatDefaultLimit {
		l.ChatMaxLimit = l.ChatDefaultLimit
	}
	return l
}
