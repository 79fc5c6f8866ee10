package registry

// topics maps topic labels to their trigger keywords. Matching runs over the
// lowercased title + " " + description of each item.
var topics = []Dictionary{
	{Label: "Conflict/Military", Keywords: []string{"war", "military", "troops", "missile", "strike", "offensive", "ceasefire", "drone", "artillery", "invasion", "airstrike", "frontline"}},
	{Label: "Diplomacy", Keywords: []string{"diplomat", "summit", "treaty", "sanction", "embassy", "bilateral", "negotiation", "foreign minister", "state visit", "accord"}},
	{Label: "Cyber", Keywords: []string{"cyber", "ransomware", "malware", "breach", "hacker", "phishing", "zero-day", "botnet", "ddos", "exploit", "vulnerability"}},
	{Label: "PRC/China", Keywords: []string{"china", "chinese", "beijing", "prc", "pla ", "xi jinping", "taiwan strait"}},
	{Label: "Russia/Ukraine", Keywords: []string{"russia", "russian", "ukraine", "ukrainian", "kremlin", "moscow", "kyiv", "donbas", "crimea"}},
	{Label: "Middle East", Keywords: []string{"israel", "gaza", "iran", "hezbollah", "houthi", "lebanon", "syria", "west bank", "red sea"}},
	{Label: "Space/EO", Keywords: []string{"satellite", "launch", "orbit", "spacecraft", "rocket", "space station", "reconnaissance satellite", "earth observation"}},
	{Label: "Nuclear/WMD", Keywords: []string{"nuclear", "enrichment", "warhead", "icbm", "ballistic", "nonproliferation", "chemical weapon", "plutonium"}},
	{Label: "Energy", Keywords: []string{"oil", "gas", "pipeline", "opec", "refinery", "lng", "crude", "power grid", "electricity"}},
	{Label: "Economy/Trade", Keywords: []string{"tariff", "trade", "export", "inflation", "gdp", "sanctions", "supply chain", "central bank", "currency"}},
	{Label: "Terrorism", Keywords: []string{"terror", "bomb", "extremist", "isis", "al-qaeda", "insurgent", "militant", "hostage"}},
	{Label: "Elections/Politics", Keywords: []string{"election", "vote", "parliament", "coup", "protest", "referendum", "impeach", "coalition", "opposition leader"}},
	{Label: "Disaster/Humanitarian", Keywords: []string{"earthquake", "flood", "hurricane", "typhoon", "wildfire", "famine", "refugee", "evacuation", "aid convoy", "outbreak"}},
	{Label: "Maritime", Keywords: []string{"navy", "naval", "warship", "tanker", "strait", "coast guard", "freedom of navigation", "submarine", "port"}},
	{Label: "Intelligence", Keywords: []string{"espionage", "spy", "intelligence agency", "surveillance", "covert", "classified", "counterintelligence", "defector"}},
	{Label: "AI/Tech", Keywords: []string{"artificial intelligence", " ai ", "semiconductor", "chip", "quantum", "biotech", "export control", "5g"}},
}

// geos maps region labels to their trigger keywords. Matching runs over the
// lowercased title + " " + description + " " + source region of each item.
var geos = []Dictionary{
	{Label: "Asia", Keywords: []string{"china", "beijing", "taiwan", "japan", "tokyo", "korea", "seoul", "pyongyang", "india", "delhi", "pakistan", "vietnam", "philippines", "indonesia", "asia"}},
	{Label: "Europe", Keywords: []string{"europe", "eu ", "brussels", "germany", "berlin", "france", "paris", "uk ", "london", "poland", "ukraine", "russia", "moscow", "kyiv", "nato"}},
	{Label: "Middle East", Keywords: []string{"israel", "gaza", "iran", "tehran", "iraq", "syria", "lebanon", "saudi", "yemen", "qatar", "uae", "middle east", "mena"}},
	{Label: "Africa", Keywords: []string{"africa", "nigeria", "ethiopia", "sudan", "kenya", "sahel", "congo", "mali", "somalia", "south africa"}},
	{Label: "Americas", Keywords: []string{"united states", "washington", "u.s.", "canada", "ottawa", "mexico", "brazil", "venezuela", "argentina", "americas", "latin america"}},
	{Label: "Oceania", Keywords: []string{"australia", "canberra", "new zealand", "pacific islands", "papua", "fiji", "oceania"}},
	{Label: "Arctic", Keywords: []string{"arctic", "svalbard", "northern sea route", "greenland", "polar"}},
}

// geoBuckets groups geo labels into the coarse buckets the dashboard renders.
var geoBuckets = map[string][]string{
	"Indo-Pacific":       {"Asia", "Oceania"},
	"EMEA":               {"Europe", "Middle East", "Africa"},
	"Western Hemisphere": {"Americas"},
	"Polar":              {"Arctic"},
}
