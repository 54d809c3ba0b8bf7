package portref

// DefaultOverrides are canonical display names that replace whatever the raw
// reference file lists first for a code.
var DefaultOverrides = map[string]string{
	"INMAA": "Chennai ICD",
	"KRPUS": "Busan",
	"MYPKG": "Port Klang",
	"INBLR": "Bangalore ICD",
	"THBKK": "Bangkok",
	"CNTXG": "Xingang",
	"CNSZX": "Shenzhen",
	"SGSIN": "Singapore",
	"HKHKG": "Hong Kong",
	"CNSHA": "Shanghai",
	"INNSA": "Nhava Sheva",
	"INWFD": "ICD Whitefield",
	"INMUN": "Mundra ICD",
	"JPYOK": "Yokohama",
	"THLCH": "Laem Chabang",
	"AEJEA": "Jebel Ali",
	"PHMNL": "Manila",
	"VNSGN": "Ho Chi Minh",
	"BDDAC": "Dhaka",
	"ITGOA": "Genoa",
	"TRAMR": "Ambarli",
	"TRIZM": "Izmir",
	"TWKEL": "Keelung",
	"USHOU": "Houston",
	"USLAX": "Los Angeles",
	"ZACPT": "Cape Town",
	"DEHAM": "Hamburg",
	"CNQIN": "Qingdao",
	"CNNSA": "Nansha",
	"CNGZG": "Guangzhou",
	"IDSUB": "Surabaya",
	"JPOSA": "Osaka",
	"SAJED": "Jeddah",
}
