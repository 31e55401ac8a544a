// package services defines clients for the two external collaborators:
// the YouTube Data API (source playlist listing) and the Spotify Web API
// (track search, playlist creation, add-to-playlist).
//
// The YouTube client is read-only and API-key authenticated. The Spotify
// client performs the OAuth2 authorization-code flow and caches its token
// to a JSON file between runs.
package services
