// Buzzstream - Real-time Event Stream Distribution
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/buzzstream

package generator

// topic is one political subject with its hashtags and keywords.
type topic struct {
	hashtags []string
	keywords []string
}

var topics = []topic{
	{
		hashtags: []string{"SubsidiBBM", "PolitikIndonesia", "APBN2024"},
		keywords: []string{"subsidi", "BBM", "pemerintah", "kebijakan"},
	},
	{
		hashtags: []string{"PemilihanPresiden", "Pilpres2024", "Demokrasi"},
		keywords: []string{"calon", "presiden", "pemilu", "koalisi"},
	},
	{
		hashtags: []string{"IKN", "NusantaraBaru", "PindahIbukota"},
		keywords: []string{"ibu kota", "Nusantara", "Kalimantan", "pembangunan"},
	},
	{
		hashtags: []string{"UUCiptaKerja", "OmnibusLaw", "BuruhIndonesia"},
		keywords: []string{"buruh", "upah", "PHK", "demonstrasi"},
	},
	{
		hashtags: []string{"KorupsiIndonesia", "KPK", "AntiKorupsi"},
		keywords: []string{"korupsi", "KPK", "gratifikasi", "penyidikan"},
	},
}

// Buzzer account usernames rotate through these prefixes.
var buzzerPrefixes = []string{
	"politikupdate_",
	"rakyatbicara_",
	"faktaindonesia_",
	"suaranetizen_",
	"infoakurat_",
}

var buzzerPhrases = []string{
	"BREAKING: ",
	"URGENT: ",
	"VIRAL: ",
	"THREAD 🧵: ",
	"Ini yang perlu kalian tahu: ",
}

var buzzerEmojis = []string{"🔥", "⚠️", "🚨", "📢", "‼️", "✅", "❌"}

// Templates take (prefix, keyword, emoji) for buzzers and (keyword) for
// normal users. Buzzer templates that have no prefix slot ignore it.
var buzzerTemplates = []func(prefix, keyword, emoji string) string{
	func(p, k, e string) string { return p + "Kebijakan baru tentang " + k + " akan segera diumumkan! " + e },
	func(p, k, e string) string { return p + "Pemerintah berhasil " + k + " dengan hasil luar biasa! " + e },
	func(_, k, e string) string { return "WAJIB TAHU! Ini fakta sebenarnya tentang " + k + " " + e },
	func(_, k, e string) string { return "Jangan percaya hoax! Ini data resmi tentang " + k + " " + e },
}

var normalTemplates = []func(keyword string) string{
	func(k string) string { return "Menurut saya kebijakan " + k + " ini perlu dikaji lebih dalam lagi." },
	func(k string) string { return "Gimana pendapat kalian tentang " + k + "? Apa dampaknya ke kita?" },
	func(k string) string { return "Baru baca berita tentang " + k + ", semoga ada solusi terbaiknya." },
	func(k string) string { return "Sebagai warga negara, kita harus kritis terhadap " + k + "." },
}

type normalUser struct {
	username  string
	name      string
	followers int
	following int
}

var normalUsers = []normalUser{
	{username: "budi_jakarta", name: "Budi Santoso", followers: 450, following: 320},
	{username: "siti_bandung", name: "Siti Nurhaliza", followers: 1200, following: 890},
	{username: "agus_pemuda", name: "Agus Wijaya", followers: 350, following: 420},
	{username: "rina_mahasiswa", name: "Rina Kartika", followers: 680, following: 550},
	{username: "joko_entrepreneur", name: "Joko Susilo", followers: 2300, following: 1100},
}

const articleURL = "https://example.com/article"
