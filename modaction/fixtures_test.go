package modaction

const ts = "2020-01-01T10:00:00+00:00"

// transcript: a banner bot bans and kicks Troll after a human issued !kban.
var transcript = []string{
	ts + " --> Troll (troll@9.9.9.9) has joined #casualconversation",
	ts + "     Alice (alice@2.2.2.2) hello",
	ts + "     Troll (troll@9.9.9.9) spam spam",
	ts + "     Mod (mod@3.3.3.3) !kban +2d Troll spamming",
	ts + " --  Mode #casualconversation (+b *!*@9.9.9.9) by Casual_Ban_Bot (bot@services)",
	ts + " <-- Casual_Ban_Bot (bot@services) has kicked Troll (spamming)",
	ts + "     Alice (alice@2.2.2.2) finally",
}

var noise = []string{
	ts + " <-- gonzobot (gonzo@bots) has kicked Duck (You missed the duck)",
	ts + " <-- StormBot (storm@bots) has kicked VpnUser (" + VPNRegistrationNotice + ")",
	ts + " --  Mode #casualconversation (+b *!*@U:1.2.3.4) by StormBot (storm@bots)",
	ts + " --  Mode #casualconversation (+b $fix-your-connection@5.5.5.5) by StormBot (storm@bots)",
}

func concat(parts ...[]string) []string {
	var out []string
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
