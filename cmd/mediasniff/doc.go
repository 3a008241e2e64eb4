// Command mediasniff identifies media files and reports their structural
// metadata.
//
// Usage:
//
//	mediasniff parse FILE...       sniff files and print a table or JSON
//	mediasniff formats             list the decoders in dispatch order
//	mediasniff scan DIR...         sniff a tree and record it in the catalog
//	mediasniff catalog list|runs   query the catalog
//	mediasniff chunks FILE         dump the RIFF chunk or MP4 atom tree
//	mediasniff config init|show    manage the configuration file
//	mediasniff version
package main
