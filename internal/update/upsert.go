package update

import "github.com/squadpulse/squadpulse/internal/player"

// Upserts replace the record with a matching id and append otherwise, so
// repeated submissions of the same record stay idempotent on list length.

func upsertInjury(list []player.Injury, injury player.Injury) []player.Injury {
	out := make([]player.Injury, len(list))
	copy(out, list)
	for i, existing := range out {
		if existing.ID == injury.ID {
			out[i] = injury
			return out
		}
	}
	return append(out, injury)
}

func upsertAppointment(list []player.MedicalAppointment, appt player.MedicalAppointment) []player.MedicalAppointment {
	out := make([]player.MedicalAppointment, len(list))
	copy(out, list)
	for i, existing := range out {
		if existing.ID == appt.ID {
			out[i] = appt
			return out
		}
	}
	return append(out, appt)
}

func upsertAttendance(list []player.AttendanceRecord, rec player.AttendanceRecord) []player.AttendanceRecord {
	out := make([]player.AttendanceRecord, len(list))
	copy(out, list)
	if rec.ID != "" {
		for i, existing := range out {
			if existing.ID == rec.ID {
				out[i] = rec
				return out
			}
		}
	}
	return append(out, rec)
}
