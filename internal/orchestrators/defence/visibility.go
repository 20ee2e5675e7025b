package defence

// VisibilityFor returns the whisper recipients for a roll mode. GM modes
// whisper every game master in users; Self whispers the requesting user.
func VisibilityFor(mode RollMode, requestedBy string, users []User) Visibility {
	switch mode {
	case RollModePrivateGM, RollModeBlindGM:
		whisper := make([]string, 0, len(users))
		for _, u := range users {
			if u.IsGM {
				whisper = append(whisper, u.ID)
			}
		}
		return Visibility{Whisper: whisper, Blind: mode == RollModeBlindGM}
	case RollModeSelf:
		return Visibility{Whisper: []string{requestedBy}}
	default:
		return Visibility{}
	}
}
