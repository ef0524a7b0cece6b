package catalog

func avatar(code, name, template string, aliases ...string) Entry {
	return Entry{Platform: Platform{Code: code, Name: name, URLTemplate: expand(template), AvatarCapable: true}, Aliases: aliases}
}

func extended(code, name, template string, aliases ...string) Entry {
	return Entry{Platform: Platform{Code: code, Name: name, URLTemplate: expand(template)}, Aliases: aliases}
}

func linkInBio(e Entry) Entry {
	e.Platform.LinkInBio = true
	return e
}

func expand(template string) string {
	if template == "" {
		return ""
	}
	return "https://" + template
}

// DefaultEntries returns the built-in platform table.
func DefaultEntries() []Entry {
	return []Entry{
		avatar("x", "𝕏", "twitter.com/<USERNAME>", "twitter"),
		avatar("telegram", "Telegram", "t.me/<USERNAME>"),
		avatar("deviantart", "DeviantArt", "deviantart.com/<USERNAME>"),
		avatar("instagram", "Instagram", "instagram.com/<USERNAME>"),
		avatar("dribbble", "Dribbble", "dribbble.com/<USERNAME>"),
		avatar("duckduckgo", "DuckDuckGo", ""),
		avatar("reddit", "Reddit", "reddit.com/user/<USERNAME>"),
		avatar("youtube", "YouTube", "youtube.com/@<USERNAME>"),
		avatar("github", "GitHub", "github.com/<USERNAME>"),
		avatar("google", "Google", ""),
		avatar("gravatar", "Gravatar", ""),
		avatar("microlink", "Microlink", ""),
		avatar("readcv", "ReadCV", "read.cv/<USERNAME>"),
		avatar("soundcloud", "SoundCloud", "soundcloud.com/<USERNAME>"),
		avatar("substack", "Substack", "<USERNAME>.substack.com/"),
		avatar("subscribestar", "SubscribeStar", "subscribestar.adult/<USERNAME>"),
		avatar("facebook", "Facebook", "fb.com/<USERNAME>", "fb"),

		extended("fa", "FurAffinity 🐾", "www.furaffinity.net/user/<USERNAME>/"),
		extended("itaku", "Itaku", "itaku.ee/profile/<USERNAME>"),
		extended("bsky", "BlueSky", "bsky.app/profile/<USERNAME>", "bluesky"),
		extended("threads", "Threads", "www.threads.net/@<USERNAME>"),
		extended("tumblr", "Tumblr", "<USERNAME>.tumblr.com"),
		extended("pixiv", "Pixiv", "www.pixiv.net/en/users/<USERNAME>"),
		extended("patreon", "Patreon", "www.patreon.com/<USERNAME>"),
		extended("kofi", "Ko-fi 🍵", "ko-fi.com/<USERNAME>"),
		extended("plurk", "Plurk", "plurk.com/<USERNAME>"),
		linkInBio(extended("linktr.ee", "Linktr.ee 🌲", "linktr.ee/<USERNAME>")),
		linkInBio(extended("carrd.co", "Carrd.co", "<USERNAME>.carrd.co")),
		extended("booth", "Booth.pm", "<USERNAME>.booth.pm"),
		extended("skeb", "Skeb.jp", "skeb.jp/@<USERNAME>"),
		extended("fanbox", "PixivFanbox", "<USERNAME>.fanbox.cc"),
		extended("picarto", "Picarto", "www.picarto.tv/<USERNAME>"),
		extended("gumroad", "Gumroad", "<USERNAME>.gumroad.com"),
		extended("twitch", "Twitch", "www.twitch.tv/<USERNAME>"),
		linkInBio(extended("lit.link", "lit.link", "lit.link/<USERNAME>")),
		linkInBio(extended("potofu.me", "Potofu", "potofu.me/<USERNAME>")),
	}
}

// Default returns the built-in catalog.
func Default() *Catalog {
	return MustNew(DefaultEntries())
}
