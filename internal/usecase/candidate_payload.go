package usecase

import (
	"fmt"

	"go-ats-backend/internal/domain"
	"go-ats-backend/pkg/apperror"
	"go-ats-backend/pkg/validation"
)

// payloadReader pulls typed values out of a raw payload and collects shape
// errors under JSON paths such as "experience[1].skills".
type payloadReader struct {
	values domain.Payload
	prefix string
	errs   *[]apperror.FieldError
}

func newPayloadReader(values domain.Payload) payloadReader {
	return payloadReader{values: values, errs: &[]apperror.FieldError{}}
}

func (r payloadReader) nested(values map[string]any, prefix string) payloadReader {
	return payloadReader{values: values, prefix: prefix, errs: r.errs}
}

func (r payloadReader) path(key string) string {
	if r.prefix == "" {
		return key
	}
	return r.prefix + "." + key
}

func (r payloadReader) fail(field, message string) {
	*r.errs = append(*r.errs, apperror.FieldError{Field: field, Message: message})
}

func (r payloadReader) has(key string) bool {
	_, ok := r.values[key]
	return ok
}

// str returns the trimmed value, or "" when absent so that the required rule
// reports it.
func (r payloadReader) str(key string) string {
	res := validation.NormalizeString(r.values[key])
	if res.Kind == validation.TypeError {
		r.fail(r.path(key), fmt.Sprintf("%s must be a string", r.path(key)))
	}
	return res.Value
}

// optStr returns nil for absent or empty values.
func (r payloadReader) optStr(key string) *string {
	s := r.str(key)
	if s == "" {
		return nil
	}
	return &s
}

// patchStr returns nil only when the key is missing. A supplied empty string
// is kept so the caller can tell "clear" from "untouched".
func (r payloadReader) patchStr(key string) *string {
	if !r.has(key) || r.values[key] == nil {
		return nil
	}
	s := r.str(key)
	return &s
}

func (r payloadReader) listError(key string, kind validation.Kind) {
	p := r.path(key)
	if kind == validation.ParseError {
		r.fail(p, fmt.Sprintf("%s is not valid JSON; it must be an array or a JSON-encoded array", p))
		return
	}
	r.fail(p, fmt.Sprintf("%s must be an array or a JSON-encoded array", p))
}

// stringList returns the normalized list, defaulting to an empty list when
// the value is absent.
func (r payloadReader) stringList(key string) []string {
	res := validation.NormalizeStringList(r.values[key])
	switch res.Kind {
	case validation.OK:
		return res.Items
	case validation.Absent:
		return []string{}
	}
	if res.BadIndex >= 0 {
		p := fmt.Sprintf("%s[%d]", r.path(key), res.BadIndex)
		r.fail(p, fmt.Sprintf("%s must be a string", p))
	} else {
		r.listError(key, res.Kind)
	}
	return []string{}
}

// objectList returns the elements of a required array of objects.
func (r payloadReader) objectList(key string) []map[string]any {
	res := validation.NormalizeList(r.values[key])
	if res.Kind != validation.OK {
		r.listError(key, res.Kind)
		return nil
	}
	out := make([]map[string]any, 0, len(res.Items))
	for i, item := range res.Items {
		obj, kind := validation.NormalizeObject(item)
		if kind != validation.OK {
			p := fmt.Sprintf("%s[%d]", r.path(key), i)
			r.fail(p, fmt.Sprintf("%s must be an object", p))
			obj = map[string]any{}
		}
		out = append(out, obj)
	}
	return out
}

func (r payloadReader) boolean(key string) bool {
	res := validation.NormalizeBool(r.values[key])
	if res.Kind == validation.TypeError {
		r.fail(r.path(key), fmt.Sprintf("%s must be a boolean", r.path(key)))
	}
	return res.Value
}

func decodeCandidateInput(p domain.Payload) (domain.CandidateInput, []apperror.FieldError) {
	r := newPayloadReader(p)
	in := domain.CandidateInput{
		FirstName:  r.str("firstName"),
		LastName:   r.str("lastName"),
		Email:      r.str("email"),
		Phone:      r.str("phone"),
		Street:     r.optStr("street"),
		City:       r.optStr("city"),
		State:      r.optStr("state"),
		PostalCode: r.optStr("postalCode"),
		Country:    r.optStr("country"),
		Status:     r.optStr("status"),
		Tags:       r.stringList("tags"),
	}

	for i, obj := range r.objectList("education") {
		er := r.nested(obj, fmt.Sprintf("education[%d]", i))
		in.Education = append(in.Education, domain.EducationInput{
			Institution:  er.str("institution"),
			Title:        er.str("title"),
			Degree:       er.optStr("degree"),
			FieldOfStudy: er.optStr("fieldOfStudy"),
			StartDate:    er.str("startDate"),
			EndDate:      er.str("endDate"),
			Description:  er.optStr("description"),
		})
	}

	for i, obj := range r.objectList("experience") {
		xr := r.nested(obj, fmt.Sprintf("experience[%d]", i))
		in.Experience = append(in.Experience, domain.ExperienceInput{
			Company:      xr.str("company"),
			Position:     xr.str("position"),
			Location:     xr.optStr("location"),
			StartDate:    xr.str("startDate"),
			EndDate:      xr.str("endDate"),
			Description:  xr.str("description"),
			CurrentJob:   xr.boolean("currentJob"),
			Achievements: xr.stringList("achievements"),
			Skills:       xr.stringList("skills"),
		})
	}

	return in, *r.errs
}

// decodeCandidatePatch reads only top-level candidate fields. Nested
// education and experience in the payload are ignored on update.
func decodeCandidatePatch(p domain.Payload) (domain.CandidatePatch, []apperror.FieldError) {
	r := newPayloadReader(p)
	patch := domain.CandidatePatch{
		FirstName:  r.patchStr("firstName"),
		LastName:   r.patchStr("lastName"),
		Email:      r.patchStr("email"),
		Phone:      r.patchStr("phone"),
		Street:     r.patchStr("street"),
		City:       r.patchStr("city"),
		State:      r.patchStr("state"),
		PostalCode: r.patchStr("postalCode"),
		Country:    r.patchStr("country"),
		Status:     r.patchStr("status"),
	}

	res := validation.NormalizeStringList(p["tags"])
	switch {
	case res.Kind == validation.OK:
		patch.Tags = &res.Items
	case res.Kind == validation.Absent:
	case res.BadIndex >= 0:
		field := fmt.Sprintf("tags[%d]", res.BadIndex)
		r.fail(field, field+" must be a string")
	default:
		r.listError("tags", res.Kind)
	}

	return patch, *r.errs
}

// toCandidate maps a validated input onto a new Candidate. Dates have already
// passed the iso8601 rule.
func toCandidate(in domain.CandidateInput, cvFilePath *string) *domain.Candidate {
	c := &domain.Candidate{
		FirstName:  in.FirstName,
		LastName:   in.LastName,
		Email:      in.Email,
		Phone:      in.Phone,
		Street:     in.Street,
		City:       in.City,
		State:      in.State,
		PostalCode: in.PostalCode,
		Country:    in.Country,
		Status:     in.Status,
		CVFilePath: cvFilePath,
		Tags:       in.Tags,
		Education:  make([]domain.Education, 0, len(in.Education)),
		Experience: make([]domain.Experience, 0, len(in.Experience)),
	}
	if c.Tags == nil {
		c.Tags = []string{}
	}

	for _, e := range in.Education {
		start, _ := validation.ParseISO8601(e.StartDate)
		end, _ := validation.ParseISO8601(e.EndDate)
		c.Education = append(c.Education, domain.Education{
			Institution:  e.Institution,
			Title:        e.Title,
			Degree:       e.Degree,
			FieldOfStudy: e.FieldOfStudy,
			StartDate:    start,
			EndDate:      end,
			Description:  e.Description,
		})
	}

	for _, x := range in.Experience {
		start, _ := validation.ParseISO8601(x.StartDate)
		end, _ := validation.ParseISO8601(x.EndDate)
		c.Experience = append(c.Experience, domain.Experience{
			Company:      x.Company,
			Position:     x.Position,
			Location:     x.Location,
			StartDate:    start,
			EndDate:      end,
			CurrentJob:   x.CurrentJob,
			Description:  x.Description,
			Achievements: x.Achievements,
			Skills:       x.Skills,
		})
	}

	return c
}
