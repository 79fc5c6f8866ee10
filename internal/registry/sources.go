package registry

import "intelcore/internal/domain/entity"

// defaultSources is the built-in worldwide feed table. Weights are editorial
// trust weights in [0,1] and feed directly into item confidence.
var defaultSources = []entity.FeedSource{
	{Src: "reuters-world", URL: "https://feeds.reuters.com/Reuters/worldNews", Weight: 0.95, Region: "Global"},
	{Src: "ap-world", URL: "https://feedx.net/rss/ap.xml", Weight: 0.93, Region: "Global"},
	{Src: "bbc-world", URL: "https://feeds.bbci.co.uk/news/world/rss.xml", Weight: 0.92, Region: "Global"},
	{Src: "afp", URL: "https://www.afp.com/en/news-hub/1316/feed", Weight: 0.9, Region: "Global"},
	{Src: "aljazeera", URL: "https://www.aljazeera.com/xml/rss/all.xml", Weight: 0.82, Region: "MENA"},
	{Src: "france24", URL: "https://www.france24.com/en/rss", Weight: 0.84, Region: "Europe"},
	{Src: "dw", URL: "https://rss.dw.com/rdf/rss-en-all", Weight: 0.86, Region: "Europe"},
	{Src: "euronews", URL: "https://www.euronews.com/rss", Weight: 0.78, Region: "Europe"},
	{Src: "politico-eu", URL: "https://www.politico.eu/feed/", Weight: 0.8, Region: "Europe"},
	{Src: "guardian-world", URL: "https://www.theguardian.com/world/rss", Weight: 0.85, Region: "Europe"},
	{Src: "kyiv-independent", URL: "https://kyivindependent.com/feed/", Weight: 0.74, Region: "Europe"},
	{Src: "meduza", URL: "https://meduza.io/rss/en/all", Weight: 0.72, Region: "Europe"},
	{Src: "nhk-world", URL: "https://www3.nhk.or.jp/rss/news/cat6.xml", Weight: 0.85, Region: "Asia"},
	{Src: "scmp", URL: "https://www.scmp.com/rss/91/feed", Weight: 0.76, Region: "Asia"},
	{Src: "nikkei-asia", URL: "https://asia.nikkei.com/rss/feed/nar", Weight: 0.82, Region: "Asia"},
	{Src: "times-of-india", URL: "https://timesofindia.indiatimes.com/rssfeeds/296589292.cms", Weight: 0.7, Region: "Asia"},
	{Src: "korea-herald", URL: "http://www.koreaherald.com/common/rss_xml.php?ct=102", Weight: 0.72, Region: "Asia"},
	{Src: "channelnewsasia", URL: "https://www.channelnewsasia.com/api/v1/rss-outbound-feed?_format=xml", Weight: 0.78, Region: "Asia"},
	{Src: "taipei-times", URL: "https://www.taipeitimes.com/xml/index.rss", Weight: 0.7, Region: "Asia"},
	{Src: "abc-au", URL: "https://www.abc.net.au/news/feed/51120/rss.xml", Weight: 0.82, Region: "Oceania"},
	{Src: "rnz", URL: "https://www.rnz.co.nz/rss/world.xml", Weight: 0.75, Region: "Oceania"},
	{Src: "timesofisrael", URL: "https://www.timesofisrael.com/feed/", Weight: 0.72, Region: "MENA"},
	{Src: "al-monitor", URL: "https://www.al-monitor.com/rss", Weight: 0.7, Region: "MENA"},
	{Src: "arab-news", URL: "https://www.arabnews.com/rss.xml", Weight: 0.66, Region: "MENA"},
	{Src: "africanews", URL: "https://www.africanews.com/feed/rss", Weight: 0.7, Region: "Africa"},
	{Src: "mail-guardian", URL: "https://mg.co.za/feed/", Weight: 0.68, Region: "Africa"},
	{Src: "nation-kenya", URL: "https://nation.africa/kenya/rss.xml", Weight: 0.64, Region: "Africa"},
	{Src: "merco-press", URL: "https://en.mercopress.com/rss/index.xml", Weight: 0.62, Region: "LatAm"},
	{Src: "batimes", URL: "https://www.batimes.com.ar/feed", Weight: 0.62, Region: "LatAm"},
	{Src: "mexico-news-daily", URL: "https://mexiconewsdaily.com/feed/", Weight: 0.6, Region: "LatAm"},
	{Src: "cbc-world", URL: "https://www.cbc.ca/webfeed/rss/rss-world", Weight: 0.82, Region: "Americas"},
	{Src: "npr-world", URL: "https://feeds.npr.org/1004/rss.xml", Weight: 0.84, Region: "Americas"},
	{Src: "defense-news", URL: "https://www.defensenews.com/arc/outboundfeeds/rss/", Weight: 0.76, Region: "Global"},
	{Src: "breaking-defense", URL: "https://breakingdefense.com/feed/", Weight: 0.72, Region: "Global"},
	{Src: "war-on-the-rocks", URL: "https://warontherocks.com/feed/", Weight: 0.7, Region: "Global"},
	{Src: "bleeping-computer", URL: "https://www.bleepingcomputer.com/feed/", Weight: 0.72, Region: "Global"},
	{Src: "the-record", URL: "https://therecord.media/feed", Weight: 0.74, Region: "Global"},
	{Src: "space-news", URL: "https://spacenews.com/feed/", Weight: 0.74, Region: "Global"},
	{Src: "maritime-executive", URL: "https://maritime-executive.com/articles.rss", Weight: 0.66, Region: "Global"},
	{Src: "oilprice", URL: "https://oilprice.com/rss/main", Weight: 0.62, Region: "Global"},
	{Src: "un-news", URL: "https://news.un.org/feed/subscribe/en/news/all/rss.xml", Weight: 0.8, Region: "Global"},
	{Src: "reliefweb", URL: "https://reliefweb.int/updates/rss.xml", Weight: 0.74, Region: "Global"},
}
