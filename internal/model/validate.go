package model

import "fmt"

// Validate is the schema validator gating every load and save path. It
// returns nil only when classes, teachers and settings are objects, every
// class has a students object and every student has a non-empty name and a
// non-negative star count. The first violation found is returned wrapped in
// ErrInvalidDocument.
func Validate(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: document is empty", ErrInvalidDocument)
	}
	if doc.Classes == nil {
		return fmt.Errorf("%w: classes must be an object", ErrInvalidDocument)
	}
	if doc.Teachers == nil {
		return fmt.Errorf("%w: teachers must be an object", ErrInvalidDocument)
	}
	if doc.Settings == nil {
		return fmt.Errorf("%w: settings must be an object", ErrInvalidDocument)
	}

	for className, class := range doc.Classes {
		if class.Students == nil {
			return fmt.Errorf("%w: class %q: students must be an object", ErrInvalidDocument, className)
		}
		for id, student := range class.Students {
			if student.Name == "" {
				return fmt.Errorf("%w: class %q: student %q has no name", ErrInvalidDocument, className, id)
			}
			if student.Stars < 0 {
				return fmt.Errorf("%w: class %q: student %q has negative stars", ErrInvalidDocument, className, id)
			}
		}
	}

	return nil
}

// IsValid reports whether doc passes Validate.
func IsValid(doc *Document) bool {
	return Validate(doc) == nil
}
