package notice

import "time"

type Variant string

const (
	VariantDefault     Variant = "default"
	VariantDestructive Variant = "destructive"
)

// Notice is a user-visible notification, the backend side of a toast.
type Notice struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Variant     Variant   `json:"variant"`
	At          time.Time `json:"at"`
}

func Info(title, description string) Notice {
	return Notice{Title: title, Description: description, Variant: VariantDefault, At: time.Now()}
}

func Failure(title, description string) Notice {
	return Notice{Title: title, Description: description, Variant: VariantDestructive, At: time.Now()}
}
