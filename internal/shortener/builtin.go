package shortener

var builtinDomains = []string{
	"1url.com",
	"adcraft.co",
	"adcrun.ch",
	"adf.ly",
	"adflav.com",
	"aka.gr",
	"amzn.to",
	"bee4.biz",
	"bit.do",
	"bit.ly",
	"bitly.com",
	"bl.ink",
	"buff.ly",
	"buzurl.com",
	"cur.lv",
	"cutt.ly",
	"db.tt",
	"dlvr.it",
	"doiop.com",
	"fb.me",
	"filoops.info",
	"goo.gl",
	"hmm.ph",
	"ift.tt",
	"imgs.fyi",
	"is.gd",
	"j.mp",
	"lnkd.in",
	"ow.ly",
	"q.gs",
	"qr.ae",
	"qr.net",
	"rebrand.ly",
	"scrnch.me",
	"shar.es",
	"soo.gd",
	"su.pr",
	"t.co",
	"t.ly",
	"tiny.cc",
	"tinyurl.com",
	"tr.im",
	"trib.al",
	"u.to",
	"v.gd",
	"vzturl.com",
	"wp.me",
	"x.co",
	"youtu.be",
}
