package command

const StartMessage = "👋 Hi! Send journey followed by origin and destination, e.g.\n" +
	"journey London Waterloo to Winchester at 17:30\n\n" +
	"Need a station code? Try stations <search term>."

const HelpMessage = "Usage:\n" +
	"  journey <origin> to <destination> [at HH:MM]\n" +
	"  stations <search term>\n\n" +
	"Examples:\n" +
	"  journey Manchester Piccadilly to London Euston\n" +
	"  journey Leeds to York at 09:15\n" +
	"  stations Paddington"
